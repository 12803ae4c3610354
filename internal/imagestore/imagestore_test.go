package imagestore

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 100, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestSaveResizesAndReencodes(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	name, err := store.Save(pngBytes(t, 1600, 900), "big photo.png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	img, err := imaging.Open(store.Path(name))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 800 || b.Dy() > 800 {
		t.Fatalf("image exceeds 800x800: %dx%d", b.Dx(), b.Dy())
	}
	// 1600x900 fit into 800x800 keeps the aspect ratio
	if b.Dx() != 800 || b.Dy() != 450 {
		t.Fatalf("aspect ratio not preserved: %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveKeepsSmallImages(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	name, err := store.Save(pngBytes(t, 300, 200), "small.jpg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	img, err := imaging.Open(store.Path(name))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 200 {
		t.Fatalf("small image must not be upscaled: %v", img.Bounds())
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Save(pngBytes(t, 10, 10), "payload.exe")
	if !errors.Is(err, ErrDisallowedType) {
		t.Fatalf("err = %v, want ErrDisallowedType", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d artifacts in the store", len(entries))
	}
}

func TestSaveCleansUpOnDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Save(bytes.NewBufferString("this is not an image"), "broken.png")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("failed upload left %d artifacts", len(entries))
	}
}

func TestDelete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	name, err := store.Save(pngBytes(t, 20, 20), "x.png")
	if err != nil {
		t.Fatal(err)
	}
	if !store.Exists(name) {
		t.Fatal("stored image must exist")
	}
	if err := store.Delete(name); err != nil {
		t.Fatal(err)
	}
	if store.Exists(name) {
		t.Fatal("image still retrievable after delete")
	}
	// deleting again is fine
	if err := store.Delete(name); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
