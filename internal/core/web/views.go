package web

import "github.com/startpaged/startpaged/internal/core/db"

type sitePayload struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	URL           string `json:"url,omitempty"`
	Type          string `json:"type,omitempty"`
	IconType      string `json:"iconType,omitempty"`
	Icon          string `json:"icon,omitempty"`
	CustomIconURL string `json:"customIconUrl,omitempty"`
	ParentID      string `json:"parentId,omitempty"`
	Category      string `json:"category,omitempty"`
	Position      int    `json:"position,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

func toSitePayload(s db.Site) sitePayload {
	return sitePayload{
		ID:            s.ID,
		Name:          s.Name,
		URL:           s.URL,
		Type:          s.Type,
		IconType:      s.IconType,
		Icon:          s.Icon,
		CustomIconURL: s.CustomIconURL,
		ParentID:      s.ParentID,
		Category:      s.Category,
		Position:      s.Position,
		CreatedAt:     s.CreatedAt,
	}
}

func (p sitePayload) toSite() db.Site {
	return db.Site{
		ID:            p.ID,
		Name:          p.Name,
		URL:           p.URL,
		Type:          p.Type,
		IconType:      p.IconType,
		Icon:          p.Icon,
		CustomIconURL: p.CustomIconURL,
		ParentID:      p.ParentID,
		Category:      p.Category,
		Position:      p.Position,
	}
}

type categoryPayload struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Position  int    `json:"position,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func toCategoryPayload(c db.Category) categoryPayload {
	return categoryPayload{ID: c.ID, Name: c.Name, Position: c.Position, CreatedAt: c.CreatedAt}
}
