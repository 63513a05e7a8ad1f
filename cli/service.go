package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jafari-mohammad-reza/canvacast/pkg"
	"github.com/jafari-mohammad-reza/canvacast/server"
)

// SignedPost sends a request the way the platform would: JSON body plus
// X-Canva-Timestamp and X-Canva-Signatures computed from the shared secret.
func SignedPost(serverAddr, secret, path string, body []byte) (*http.Response, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("secret is not valid base64: %w", err)
	}
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	message, err := server.PostMessage(timestamp, path, body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s%s", serverAddr, path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Canva-Timestamp", timestamp)
	req.Header.Set("X-Canva-Signatures", server.CalculateSignature(key, message))
	return http.DefaultClient.Do(req)
}

// PublishAsset uploads a single asset through a running server and returns
// the public URL it was published at.
func PublishAsset(serverAddr, secret, user, parent string, asset pkg.Asset) (string, error) {
	body, err := json.Marshal(pkg.UploadBody{User: user, Parent: parent, Assets: []pkg.Asset{asset}})
	if err != nil {
		return "", err
	}
	resp, err := SignedPost(serverAddr, secret, "/publish/resources/upload", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return "", errors.New("request rejected, check CLIENT_SECRET")
	}
	var responseBody struct {
		Type      string `json:"type"`
		Url       string `json:"url"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return "", err
	}
	if responseBody.Type != pkg.ResponseSuccess {
		return "", fmt.Errorf("publish failed: %s", responseBody.ErrorCode)
	}
	return responseBody.Url, nil
}

// Status fetches the latest published asset snapshot from /url.
func Status(serverAddr string) (string, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/url", serverAddr))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
