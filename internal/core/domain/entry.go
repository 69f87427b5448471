package domain

// Entry is one child of a browsed directory.
//
// Name is the raw entry name, never a joined path. Modified is whole seconds
// since the Unix epoch.
type Entry struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	IsDir    bool   `json:"isdir"`
	Modified int64  `json:"modified"`
}
