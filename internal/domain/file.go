package domain

// File is metadata for an uploaded asset (avatar or signature).
type File struct {
	ID   int64
	Name string
	Path string
	URL  string
}
