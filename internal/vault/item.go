package vault

// Kind tags the four item variants.
type Kind string

const (
	KindNote  Kind = "NOTE"
	KindFile  Kind = "FILE"
	KindImage Kind = "IMAGE"
	KindVideo Kind = "VIDEO"
)

// Item is one entry of the vault. The set of implementations is closed:
// Note, File, Image and Video.
type Item interface {
	Kind() Kind
	// Label is the display text: the note body or the imported file name.
	Label() string
	// OwnedFiles lists the payload and thumbnail paths the item owns.
	OwnedFiles() []string

	isItem()
}

// Note is a text-only item with no backing files.
type Note struct {
	Text string
}

// File is an imported payload without a preview.
type File struct {
	Name string
	Path string
}

// Image is an imported picture. Thumbnail is empty when none was generated.
type Image struct {
	Name      string
	Path      string
	Thumbnail string
}

// Video is an imported clip. Thumbnail is empty when none was generated.
type Video struct {
	Name      string
	Path      string
	Thumbnail string
}

func (Note) Kind() Kind  { return KindNote }
func (File) Kind() Kind  { return KindFile }
func (Image) Kind() Kind { return KindImage }
func (Video) Kind() Kind { return KindVideo }

func (n Note) Label() string  { return n.Text }
func (f File) Label() string  { return f.Name }
func (i Image) Label() string { return i.Name }
func (v Video) Label() string { return v.Name }

func (Note) OwnedFiles() []string   { return nil }
func (f File) OwnedFiles() []string { return nonEmpty(f.Path) }
func (i Image) OwnedFiles() []string {
	return nonEmpty(i.Path, i.Thumbnail)
}
func (v Video) OwnedFiles() []string {
	return nonEmpty(v.Path, v.Thumbnail)
}

func (Note) isItem()  {}
func (File) isItem()  {}
func (Image) isItem() {}
func (Video) isItem() {}

// PayloadPath returns the copied payload of an item, or "" for notes.
func PayloadPath(item Item) string {
	switch it := item.(type) {
	case File:
		return it.Path
	case Image:
		return it.Path
	case Video:
		return it.Path
	default:
		return ""
	}
}

// ThumbnailPath returns the preview of an item, or "" when it has none.
func ThumbnailPath(item Item) string {
	switch it := item.(type) {
	case Image:
		return it.Thumbnail
	case Video:
		return it.Thumbnail
	default:
		return ""
	}
}

func nonEmpty(paths ...string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
