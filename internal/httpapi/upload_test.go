package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReadUploads_OrderAndDuplicates(t *testing.T) {
	body, ct := multipartBody(t, []filePart{
		{field: "photo", filename: "a.png", data: []byte("1")},
		{field: "extra", filename: "b.png", data: []byte("22")},
		{field: "photo", filename: "c.png", data: []byte("333")},
	}, map[string]string{"caption": "leaf"})
	req := httptest.NewRequest(http.MethodPost, "/x", body)
	req.Header.Set("Content-Type", ct)
	form, err := readUploads(req)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(form.Files) != 3 {
		t.Fatalf("files=%d", len(form.Files))
	}
	got := form.fileFields()
	if len(got) != 2 || got[0] != "photo" || got[1] != "extra" {
		t.Fatalf("fields=%v", got)
	}
	u, ok := form.file("photo")
	if !ok || u.Filename != "a.png" || string(u.Data) != "1" {
		t.Fatalf("first photo=%+v", u)
	}
	if _, ok := form.file("image"); ok {
		t.Fatalf("unexpected image part")
	}
}

func TestHasAllowedExtension(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png": true, "a.PNG": true, "a.Jpg": true, "a.jpeg": true, "a.gif": true,
		"a.bmp": false, "a.webp": false, "png": false, "a.png.exe": false, "": false,
		".png": false, "..png": false, "dir/.jpg": false, ".leaf.png": true, "dir.png/leaf": false,
	} {
		if got := hasAllowedExtension(name); got != want {
			t.Fatalf("%q: got %v want %v", name, got, want)
		}
	}
}

func TestSelectImage_ReturnsImagePart(t *testing.T) {
	form := &uploadForm{Files: []upload{{Field: "other", Filename: "x.png", Data: []byte("x")}, {Field: "image", Filename: "leaf.gif", Data: []byte("GIF89a")}}}
	img, err := selectImage(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Filename != "leaf.gif" {
		t.Fatalf("img=%+v", img)
	}
}
