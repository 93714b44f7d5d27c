package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fogleman/gg"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"golang.org/x/image/font/basicfont"

	"brandpost-bot/pkg/telegoapi"
)

const (
	labelAlpha  = 0.5
	labelMargin = 16
	jpegQuality = 85

	downloadTimeout = 30 * time.Second
	maxDownloadSize = 20 << 20
)

// Annotator stamps a text label onto photos before publication. Every
// failure degrades gracefully: the caller gets the original file id back
// and the post goes out unwatermarked.
type Annotator struct {
	bot    telegoapi.BotAPI
	client *http.Client
	label  string
}

// New creates an annotator stamping the given label.
func New(bot telegoapi.BotAPI, label string) *Annotator {
	return &Annotator{
		bot:    bot,
		client: &http.Client{Timeout: downloadTimeout},
		label:  label,
	}
}

// Transform downloads the photo, stamps the label in the bottom-right
// corner, and returns an upload-ready input file. On any failure it
// returns an input file referencing the original file id.
func (a *Annotator) Transform(ctx context.Context, fileID string) telego.InputFile {
	original := telego.InputFile{FileID: fileID}

	data, err := a.download(ctx, fileID)
	if err != nil {
		log.Printf("[Watermark] Download failed for file %s, publishing original: %v", fileID, err)
		return original
	}

	annotated, err := a.annotate(data)
	if err != nil {
		log.Printf("[Watermark] Annotation failed for file %s, publishing original: %v", fileID, err)
		return original
	}

	return tu.File(tu.NameReader(bytes.NewReader(annotated), "photo.jpg"))
}

func (a *Annotator) download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := a.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.bot.FileDownloadURL(file.FilePath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	return data, nil
}

func (a *Annotator) annotate(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGBA(1, 1, 1, labelAlpha)

	w, h := dc.MeasureString(a.label)
	x := float64(dc.Width()) - w - labelMargin
	y := float64(dc.Height()) - h - labelMargin
	dc.DrawString(a.label, x, y)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
