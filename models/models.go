package models

// SplitRequest describes an explicit split request. Either SourceFilePath is set
// (local mode) or SourceContainer and FileName are set (storage mode).
type SplitRequest struct {
	SourceFilePath           string `json:"sourceFilePath,omitempty"`
	DestinationDirectoryPath string `json:"destinationDirectoryPath,omitempty"`
	SourceContainer          string `json:"sourceContainer,omitempty"`
	DestinationContainer     string `json:"destinationContainer,omitempty"`
	FileName                 string `json:"fileName,omitempty"`
}

// LocalMode reports whether the request reads from and writes to the local
// filesystem. A non-empty SourceFilePath wins over any storage fields.
func (r SplitRequest) LocalMode() bool {
	return r.SourceFilePath != ""
}

// StorageMode reports whether the request names a source object in a container.
func (r SplitRequest) StorageMode() bool {
	return r.SourceContainer != "" && r.FileName != ""
}

// SourceName is the name output page names are derived from.
func (r SplitRequest) SourceName() string {
	if r.FileName != "" {
		return r.FileName
	}
	return r.SourceFilePath
}

// SourceDocument is the full content of an input document held in memory.
type SourceDocument struct {
	Name string
	Data []byte
}

// PageDocument is a single-page document extracted from a SourceDocument.
type PageDocument struct {
	// Index is zero-based.
	Index int
	Data  []byte
}

// Number returns the 1-based page number.
func (p PageDocument) Number() int {
	return p.Index + 1
}

// SplitResult summarises a completed split.
type SplitResult struct {
	Pages   int      `json:"pages"`
	Outputs []string `json:"outputs"`
}

// SplitPlan describes the outputs a split request would produce.
type SplitPlan struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Pages       int      `json:"pages"`
	Outputs     []string `json:"outputs"`
}
