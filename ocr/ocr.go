// Package ocr provides the optional tier-3 evidence source: text boxes
// recognized from a viewport screenshot. Recognition is best-effort — when
// Tesseract is not usable the recognizer simply reports itself unavailable
// and the resolver skips the tier.
package ocr

import (
	"fmt"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

const (
	// minConfidence drops low-certainty boxes that would otherwise produce
	// junk candidates.
	minConfidence = 60.0
	minTextLen    = 3
)

// Box is one recognized text line with its screen rectangle.
type Box struct {
	Text       string
	Left       int
	Top        int
	Width      int
	Height     int
	Confidence float64
}

// Recognizer turns screenshot bytes into text boxes.
type Recognizer interface {
	// Available reports whether recognition can be attempted at all.
	Available() bool
	// TextBoxes extracts filtered text lines from PNG image bytes.
	TextBoxes(png []byte) ([]Box, error)
}

// Tesseract is the gosseract-backed Recognizer.
type Tesseract struct {
	available bool
	languages []string
}

// NewTesseract probes the local Tesseract installation. A broken or missing
// install yields an unavailable recognizer, never an error.
func NewTesseract(languages ...string) *Tesseract {
	t := &Tesseract{languages: languages}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Tesseract probe panicked, OCR disabled: %v", r)
			t.available = false
		}
	}()
	client := gosseract.NewClient()
	defer client.Close()
	if _, err := client.GetAvailableLanguages(); err != nil {
		log.Printf("⚠️ Tesseract unavailable, OCR tier disabled: %v", err)
		return t
	}
	t.available = true
	return t
}

func (t *Tesseract) Available() bool { return t != nil && t.available }

// TextBoxes runs line-level recognition over the screenshot and keeps boxes
// with confidence >= 60 and at least 3 characters of text.
func (t *Tesseract) TextBoxes(png []byte) ([]Box, error) {
	if !t.Available() {
		return nil, fmt.Errorf("tesseract not available")
	}
	client := gosseract.NewClient()
	defer client.Close()
	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return nil, fmt.Errorf("set OCR languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("load screenshot into OCR: %w", err)
	}
	raw, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR bounding boxes: %w", err)
	}
	boxes := make([]Box, 0, len(raw))
	for _, bb := range raw {
		text := strings.TrimSpace(bb.Word)
		if len(text) < minTextLen || bb.Confidence < minConfidence {
			continue
		}
		boxes = append(boxes, Box{
			Text:       text,
			Left:       bb.Box.Min.X,
			Top:        bb.Box.Min.Y,
			Width:      bb.Box.Dx(),
			Height:     bb.Box.Dy(),
			Confidence: bb.Confidence,
		})
	}
	return boxes, nil
}

// Unavailable is a Recognizer that always declines; used where OCR support is
// deliberately not wired in.
type Unavailable struct{}

func (Unavailable) Available() bool                 { return false }
func (Unavailable) TextBoxes([]byte) ([]Box, error) { return nil, fmt.Errorf("OCR not configured") }
