package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/ivlev/note-overlay/internal/analyzer"
	"github.com/ivlev/note-overlay/internal/config"
	"github.com/ivlev/note-overlay/internal/engine"
	"github.com/ivlev/note-overlay/internal/raster"
	"github.com/ivlev/note-overlay/internal/source"
)

// samplegen пишет синтетические пары страниц для ручной проверки
// пакетного режима: noteoverlay -dir <out>.
func main() {
	outPtr := flag.String("out", "samples", "Папка для сгенерированных пар")
	pagesPtr := flag.Int("pages", 3, "Количество пар")
	flag.Parse()

	if err := os.MkdirAll(*outPtr, 0755); err != nil {
		log.Fatalf("Failed to create %s: %v", *outPtr, err)
	}

	fmt.Println("=== Synthetic Note Pages ===")
	fmt.Printf("Output: %s\n\n", *outPtr)

	fmt.Printf("[1/3] Writing %d page pairs...\n", *pagesPtr)
	var first [2]string
	for i := 1; i <= *pagesPtr; i++ {
		orig := filepath.Join(*outPtr, fmt.Sprintf("page%d.png", i))
		ann := filepath.Join(*outPtr, fmt.Sprintf("page%d_annotated.png", i))

		page := createPage(1200, 1600, i)
		// Аннотированная копия снята в половинном разрешении, как фото с телефона
		notes := annotate(createPage(600, 800, i), i)

		if err := writePNG(orig, page); err != nil {
			log.Fatalf("Failed to write %s: %v", orig, err)
		}
		if err := writePNG(ann, notes); err != nil {
			log.Fatalf("Failed to write %s: %v", ann, err)
		}
		if i == 1 {
			first = [2]string{orig, ann}
		}
		fmt.Printf("✓ %s + %s\n", filepath.Base(orig), filepath.Base(ann))
	}
	fmt.Println()
	if *pagesPtr < 1 {
		return
	}

	fmt.Println("[2/3] Measuring text mask of page 1...")
	buf, err := source.Decode(context.Background(), source.File{Path: first[0]}, source.DecodeOptions{})
	if err != nil {
		log.Fatalf("Failed to decode page: %v", err)
	}
	opts := config.DefaultOptions()
	mask := analyzer.ExtractMask(buf, opts.TextThreshold, opts.MaskExpand)
	fmt.Printf("✓ Text pixels: %d of %d (%.1f%%)\n\n",
		mask.Count(), buf.Len(), 100*float64(mask.Count())/float64(buf.Len()))

	fmt.Println("[3/3] Merging page 1...")
	res, err := engine.DefaultEngine().ProcessPair(context.Background(),
		source.File{Path: first[0]}, source.File{Path: first[1]}, opts)
	if err != nil {
		log.Fatalf("Failed to merge: %v", err)
	}
	merged := filepath.Join(*outPtr, res.Name)
	if err := os.WriteFile(merged, res.Data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", merged, err)
	}
	fmt.Printf("✓ Merged sample: %s (%dx%d)\n", merged, res.Width, res.Height)

	fmt.Println("\n✅ Samples ready!")
	fmt.Printf("📄 Batch run: noteoverlay -dir %s\n", *outPtr)
}

// createPage draws a light page with dark text-like lines.
func createPage(width, height, seed int) *raster.Buffer {
	buf := raster.New(width, height)
	fillRect(buf, 0, 0, width, height, color.NRGBA{R: 250, G: 250, B: 245, A: 255})

	line := height / 20
	for row := 2; row < 18; row++ {
		// Разная длина строк, чтобы страницы отличались
		length := width * (6 + (row*seed)%4) / 10
		fillRect(buf, width/10, row*line, width/10+length, row*line+line/3, color.NRGBA{R: 30, G: 30, B: 40, A: 255})
	}
	return buf
}

// annotate adds colored pen marks over the page.
func annotate(buf *raster.Buffer, seed int) *raster.Buffer {
	pens := []color.NRGBA{
		{R: 220, G: 40, B: 40, A: 255},
		{R: 40, G: 120, B: 220, A: 255},
		{R: 30, G: 160, B: 60, A: 255},
	}
	pen := pens[seed%len(pens)]
	w, h := buf.Width, buf.Height
	fillRect(buf, w/8, h/4, w*7/8, h/4+3, pen)
	fillRect(buf, w*3/4, h/3, w*3/4+4, h*2/3, pen)
	fillRect(buf, w/6, h*3/4, w/2, h*3/4+6, pen)
	return buf
}

func fillRect(buf *raster.Buffer, x1, y1, x2, y2 int, c color.NRGBA) {
	for y := max(y1, 0); y < min(y2, buf.Height); y++ {
		for x := max(x1, 0); x < min(x2, buf.Width); x++ {
			o := (y*buf.Width + x) * 4
			buf.Pix[o], buf.Pix[o+1], buf.Pix[o+2], buf.Pix[o+3] = c.R, c.G, c.B, c.A
		}
	}
}

func writePNG(path string, buf *raster.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, buf.Image())
}
