package cli

import (
	"fmt"

	"github.com/jafari-mohammad-reza/canvacast/pkg"
	"github.com/jafari-mohammad-reza/canvacast/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canvacast",
	Short: "canva publish extension server,",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available Commands:")
		for _, c := range cmd.Commands() {
			fmt.Printf("  %-10s %s\n", c.Name(), c.Short)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the publish extension server",
	Run: func(cmd *cobra.Command, args []string) {
		server.InitServer()
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Send a signed test publish request to a running server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := pkg.GetClientConfig()
		if err != nil {
			fmt.Println("error loading config", err.Error())
			return
		}
		asset := pkg.Asset{
			Name: cmd.Flag("name").Value.String(),
			Url:  cmd.Flag("url").Value.String(),
			Type: pkg.AssetType(cmd.Flag("type").Value.String()),
		}
		url, err := PublishAsset(cfg.ServerAddr, cfg.ClientSecret,
			cmd.Flag("user").Value.String(), cmd.Flag("to").Value.String(), asset)
		if err != nil {
			fmt.Println("error publishing asset", err.Error())
			return
		}
		fmt.Println("published at", url)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest published asset",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := pkg.GetClientConfig()
		if err != nil {
			fmt.Println("error loading config", err.Error())
			return
		}
		snapshot, err := Status(cfg.ServerAddr)
		if err != nil {
			fmt.Println("error fetching status", err.Error())
			return
		}
		fmt.Println(snapshot)
	},
}

func InitCli() error {
	publishCmd.PersistentFlags().StringP("url", "u", "", "source url of the asset")
	publishCmd.PersistentFlags().StringP("name", "n", "", "file name to publish as")
	publishCmd.PersistentFlags().StringP("type", "t", "PNG", "asset type: JPG, PNG, PDF or PPTX")
	publishCmd.PersistentFlags().String("to", "", "parent container (folder) to publish into")
	publishCmd.PersistentFlags().String("user", "", "user id the platform would send")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(statusCmd)
	return rootCmd.Execute()
}
