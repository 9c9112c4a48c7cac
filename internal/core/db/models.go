package db

// Site type values stored in the sites table.
const (
	SiteTypeSite   = "site"
	SiteTypeFolder = "folder"
)

// Icon mode values governing how a site's icon is resolved.
const (
	IconTypeAuto    = "auto"
	IconTypeUpload  = "upload"
	IconTypeLibrary = "library"
)

type Site struct {
	ID   string
	Name string
	URL  string
	// Type is "site" or "folder".
	Type string
	// IconType is "auto", "upload" or "library".
	IconType string
	// Icon holds a cached public path or provider URL for auto sites,
	// and a symbolic icon name for library sites.
	Icon string
	// CustomIconURL holds the user-provided or previously cached path
	// for upload sites.
	CustomIconURL string
	// ParentID references a folder-typed site by ID. Empty means the
	// site lives at the root level. Not a real foreign key.
	ParentID string
	// Category references a Category by name. Not a real foreign key.
	Category string
	Position int
	// CreatedAt is stored in the DB as RFC3339 text.
	CreatedAt string
}

type Category struct {
	ID       string
	Name     string
	Position int
	// CreatedAt is stored in the DB as RFC3339 text.
	CreatedAt string
}
