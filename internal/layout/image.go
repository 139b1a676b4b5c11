package layout

// ImageAsset is a decoded, re-encoded image ready for placement. Assets are
// prepared upstream so a corrupt file is caught before any page is painted;
// the PDF canvas treats decode failures as fatal for the whole document.
type ImageAsset struct {
	Name   string // registry key, unique within one document
	Format string // "JPG" or "PNG"
	Data   []byte
	PixelW int
	PixelH int
}

// Aspect returns height over width.
func (a *ImageAsset) Aspect() float64 {
	if a.PixelW <= 0 {
		return 1
	}
	return float64(a.PixelH) / float64(a.PixelW)
}
