package models

import (
	"errors"
	"time"
)

// Creative media types.
const (
	CreativeImage = "image"
	CreativeVideo = "video"
)

// AdCreative is a media asset plus copy attached to a plan. Materials
// are upload URLs returned by the upload endpoint.
type AdCreative struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	PlanID       string    `json:"planId"`
	CreativeName string    `json:"creativeName"`
	Type         string    `json:"type"`
	Materials    []string  `json:"materials"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	Link         string    `json:"link,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreativeInput carries a creative creation request.
type CreativeInput struct {
	PlanID       string   `json:"planId"`
	CreativeName string   `json:"creativeName"`
	Type         string   `json:"type"`
	Materials    []string `json:"materials"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Link         string   `json:"link"`
}

func (in *CreativeInput) Validate() error {
	if in.PlanID == "" {
		return errors.New("planId is required")
	}
	if in.CreativeName == "" {
		return errors.New("creativeName is required")
	}
	if in.Type != CreativeImage && in.Type != CreativeVideo {
		return errors.New("type must be image or video")
	}
	if len(in.Materials) == 0 {
		return errors.New("materials is required")
	}
	return nil
}

// CreativeUpdate is the allow-list of creative fields a caller may change.
type CreativeUpdate struct {
	CreativeName *string   `json:"creativeName"`
	Status       *string   `json:"status"`
	Materials    *[]string `json:"materials"`
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Link         *string   `json:"link"`
}

func (u *CreativeUpdate) Validate() error {
	if u.CreativeName != nil && *u.CreativeName == "" {
		return errors.New("creativeName must not be empty")
	}
	if u.Status != nil && !ValidStatus(*u.Status) {
		return errors.New("status is invalid")
	}
	if u.Materials != nil && len(*u.Materials) == 0 {
		return errors.New("materials must not be empty")
	}
	return nil
}

// CreativeFilter narrows creative listings.
type CreativeFilter struct {
	PlanID string
	Status string
}

// UploadResult describes a stored creative asset.
type UploadResult struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
