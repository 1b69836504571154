package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"tokencount-backend/internal/shared/apperrors"
)

func TestExtractPlainTextIsUntouched(t *testing.T) {
	reg := Default()
	input := "  This is a test document.\r\n\ttrailing  "

	got, err := reg.Extract(context.Background(), MimePlainText, []byte(input))
	if err != nil {
		t.Fatalf("extract plain text: %v", err)
	}
	if got != input {
		t.Fatalf("expected %q, got %q", input, got)
	}
}

func TestExtractUnsupportedMediaType(t *testing.T) {
	reg := Default()
	called := false
	reg.Register("application/x-probe", Func(func(data []byte) (string, error) {
		called = true
		return "", nil
	}))

	_, err := reg.Extract(context.Background(), "image/png", []byte{0x89, 'P', 'N', 'G'})
	if !apperrors.Is(err, apperrors.KindUnsupportedMediaType) {
		t.Fatalf("expected unsupported media type, got %v", err)
	}
	if called {
		t.Fatalf("no extractor should run for an unregistered type")
	}
}

func TestExtractMatchesMediaTypeExactly(t *testing.T) {
	reg := Default()
	for _, mt := range []string{"TEXT/PLAIN", "text/plain; charset=utf-8", "text/*", " text/plain"} {
		if _, err := reg.Extract(context.Background(), mt, []byte("hi")); !apperrors.Is(err, apperrors.KindUnsupportedMediaType) {
			t.Fatalf("media type %q: expected unsupported, got %v", mt, err)
		}
	}
}

func TestRegisterAddsFormatWithoutTouchingDefaults(t *testing.T) {
	reg := Default()
	reg.Register("text/markdown", Func(func(data []byte) (string, error) {
		return strings.TrimPrefix(string(data), "# "), nil
	}))

	got, err := reg.Extract(context.Background(), "text/markdown", []byte("# Title"))
	if err != nil {
		t.Fatalf("extract markdown: %v", err)
	}
	if got != "Title" {
		t.Fatalf("expected Title, got %q", got)
	}

	want := []string{MimePDF, MimeXLSX, MimeDOCX, "text/markdown", MimePlainText}
	types := reg.MediaTypes()
	if len(types) != len(want) {
		t.Fatalf("expected %d media types, got %v", len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected sorted media types %v, got %v", want, types)
		}
	}
}

func TestExtractPDFInvalidBytes(t *testing.T) {
	_, err := Default().Extract(context.Background(), MimePDF, []byte("definitely not a pdf"))
	if !apperrors.Is(err, apperrors.KindExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractPDFPagesInOrder(t *testing.T) {
	data := buildPDF("First page", "Second page")

	got, err := Default().Extract(context.Background(), MimePDF, data)
	if err != nil {
		t.Fatalf("extract pdf: %v", err)
	}
	want := "\nFirst page\nSecond page"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractPanicBecomesExtractionError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("application/x-broken", Func(func(data []byte) (string, error) {
		var m map[string]int
		m["boom"]++
		return "", nil
	}))

	_, err := reg.Extract(context.Background(), "application/x-broken", []byte("x"))
	if !apperrors.Is(err, apperrors.KindExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractDOCX(t *testing.T) {
	data := buildDOCX(t, `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>`+
		`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>line</w:t></w:r></w:p>`)

	got, err := Default().Extract(context.Background(), MimeDOCX, data)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	want := "Hello World\n\nSecond\tline\n\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractDOCXNotAZip(t *testing.T) {
	_, err := Default().Extract(context.Background(), MimeDOCX, []byte("plain bytes"))
	if !apperrors.Is(err, apperrors.KindExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractXLSXFirstSheetOnly(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	mustSet := func(sheet, cell string, value any) {
		if err := book.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("set %s!%s: %v", sheet, cell, err)
		}
	}
	mustSet("Sheet1", "A1", "name")
	mustSet("Sheet1", "B1", "count")
	mustSet("Sheet1", "A2", "apples")
	mustSet("Sheet1", "B2", 3)
	if _, err := book.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	mustSet("Other", "A1", "hidden")

	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	got, err := Default().Extract(context.Background(), MimeXLSX, buf.Bytes())
	if err != nil {
		t.Fatalf("extract xlsx: %v", err)
	}
	want := "name\tcount\napples\t3"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractXLSXSparseSheetIsPaddedGrid(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	for cell, value := range map[string]string{"A1": "a", "B1": "b", "C1": "c", "A2": "d", "B4": "e"} {
		if err := book.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	got, err := Default().Extract(context.Background(), MimeXLSX, buf.Bytes())
	if err != nil {
		t.Fatalf("extract xlsx: %v", err)
	}
	want := "a\tb\tc\nd\t\t\n\t\t\n\te\t"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractXLSXEmptySheet(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	got, err := Default().Extract(context.Background(), MimeXLSX, buf.Bytes())
	if err != nil {
		t.Fatalf("extract xlsx: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestExtractConcurrentUse(t *testing.T) {
	reg := Default()
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := reg.Extract(context.Background(), MimePlainText, []byte("same input"))
			if err != nil {
				errs <- err
				return
			}
			if got != "same input" {
				errs <- fmt.Errorf("unexpected output %q", got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent extract: %v", err)
	}
}

// buildPDF writes an uncompressed PDF with one Helvetica text run per page.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	buf.WriteString("%PDF-1.4\n")
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET\n", text)
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body +
			`</w:body></w:document>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
