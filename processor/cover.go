package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

// loadCover reads the configured cover image, converting webp to png so readers do not
// choke on it. SVG covers are stored as is.
func (p *Processor) loadCover() (*binImage, error) {

	fname := p.env.Cfg.AbsolutePath(p.env.Cfg.Doc.Cover.ImagePath)
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to read cover image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fname))
	b := &binImage{
		log:     p.env.Log,
		id:      "cover-image",
		ct:      contentTypeByExt(ext),
		fname:   "cover" + ext,
		relpath: filepath.Join(DirContent, DirImages),
		data:    data,
	}
	if ext == ".svg" {
		b.imgType = "svg"
		p.env.Log.Warn("SVG cover is stored without conversion, not all readers display it properly",
			zap.String("file", fname))
		return b, nil
	}
	if ext == ".webp" {
		b.flags |= imageConvertPNG
		b.process()
	}
	return b, nil
}

// drawCover generates a simple default cover when no image was configured.
func (p *Processor) drawCover() (*binImage, error) {

	start := time.Now()
	p.env.Log.Debug("Drawing default cover - start")
	defer func(start time.Time) {
		p.env.Log.Debug("Drawing default cover - done", zap.Duration("elapsed", time.Since(start)))
	}(start)

	w, h := p.env.Cfg.Doc.Cover.Width, p.env.Cfg.Doc.Cover.Height
	dc := gg.NewContext(w, h)

	dc.SetRGB255(44, 62, 80)
	dc.Clear()

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("unable to parse default cover font: %w", err)
	}

	title, subtitle := splitTitle(p.env.Cfg.Doc.Title)

	fh := float64(h) / 16
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: fh}))
	dc.SetRGB255(236, 240, 241)
	dc.DrawStringWrapped(title, float64(w)/2, float64(h)/3, 0.5, 0.5, float64(w)*0.9, 1.2, gg.AlignCenter)

	if len(subtitle) > 0 {
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: fh / 2}))
		dc.DrawStringWrapped(subtitle, float64(w)/2, float64(h)/2, 0.5, 0.5, float64(w)*0.9, 1.2, gg.AlignCenter)
	}

	if len(p.env.Cfg.Doc.Authors) > 0 {
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: fh / 3}))
		dc.SetRGB255(189, 195, 199)
		dc.DrawStringWrapped(strings.Join(p.env.Cfg.Doc.Authors, "\n"),
			float64(w)/2, float64(h)*5/6, 0.5, 0.5, float64(w)*0.9, 1.4, gg.AlignCenter)
	}

	b := &binImage{
		log:     p.env.Log,
		id:      "cover-image",
		ct:      "image/png",
		fname:   "cover.png",
		relpath: filepath.Join(DirContent, DirImages),
		img:     dc.Image(),
		imgType: "png",
	}
	if err := b.encodePNG(); err != nil {
		return nil, err
	}
	return b, nil
}
