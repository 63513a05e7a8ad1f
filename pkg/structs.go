package pkg

import "time"

type AssetType string

const (
	AssetJpg  AssetType = "JPG"
	AssetPng  AssetType = "PNG"
	AssetPdf  AssetType = "PDF"
	AssetPptx AssetType = "PPTX"
)

const (
	ResponseSuccess = "SUCCESS"
	ResponseError   = "ERROR"
)

const (
	ErrCodeConfigurationRequired = "CONFIGURATION_REQUIRED"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeFailedToFetch         = "FAILED_TO_FETCH"
	ErrCodeUnsupportedType       = "UNSUPPORTED_TYPE"
)

type Asset struct {
	Id   string    `json:"id,omitempty"`
	Name string    `json:"name" validate:"required"`
	Url  string    `json:"url" validate:"required,url"`
	Type AssetType `json:"type" validate:"required"`
}

type UploadBody struct {
	User   string  `json:"user" validate:"required"`
	Brand  string  `json:"brand"`
	Parent string  `json:"parent"`
	Assets []Asset `json:"assets" validate:"required,min=1,dive"`
}

type ConfigurationBody struct {
	User string `json:"user" validate:"required"`
}

type ResourceBody struct {
	Id string `json:"id" validate:"required"`
}

type AssetResult struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Url       string `json:"url,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

type Container struct {
	Type     string `json:"type"`
	Id       string `json:"id"`
	Name     string `json:"name"`
	IsOwner  bool   `json:"isOwner"`
	ReadOnly bool   `json:"readOnly"`
}

// PublishedAsset is the snapshot exposed to /url pollers after a publish.
type PublishedAsset struct {
	Id          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Url         string    `json:"url"`
	Type        AssetType `json:"type"`
	Size        int64     `json:"size"`
	PublishedAt time.Time `json:"publishedAt"`
}
