package model

import (
	"github.com/miosa/lingo-tui/style"
)

// BannerModel renders the one-line header:
//
//	lingo v0.4 · tutor · http://localhost:8000
//
// The service name is filled in once a health check reports it.
type BannerModel struct {
	version string
	service string
	baseURL string
}

func NewBanner(version, baseURL string) BannerModel {
	if version == "" {
		version = "dev"
	}
	return BannerModel{version: version, baseURL: baseURL}
}

// SetService records the backend's self-reported name.
func (m *BannerModel) SetService(name string) { m.service = name }

func (m BannerModel) View() string {
	sep := style.Faint.Render(" · ")
	out := style.Title.Render(" lingo") + style.Detail.Render(" "+m.version)
	if m.service != "" {
		out += sep + style.Detail.Render(m.service)
	}
	if m.baseURL != "" {
		out += sep + style.Faint.Render(m.baseURL)
	}
	return out
}
