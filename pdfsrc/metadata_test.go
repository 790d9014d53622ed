// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfsrc

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripXMLTags(t *testing.T) {
	in := `<p>Hello <b>World</b> &amp; <i>Gophers</i></p>`
	assert.Equal(t, "Hello World &amp; Gophers", stripXMLTags(in))
}

// documentWithXMP builds a minimal catalog-only PDF whose /Root/Metadata
// stream holds xmpXML verbatim, so XMP parsing can be tested without a
// checked-in sample file.
func documentWithXMP(t *testing.T, xmpXML string) *Reader {
	t.Helper()
	d := &docBuilder{}
	d.add("<< /Type /Catalog /Metadata 2 0 R >>")
	d.add(fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(xmpXML), xmpXML))
	data, _ := d.bytes(1)

	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return r
}

func TestReadXMPAndParseXMPWithXML(t *testing.T) {
	const xmp = `<x:xmpmeta xmlns:x="adobe:ns:meta/">
  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
    <rdf:Description
        xmlns:dc="http://purl.org/dc/elements/1.1/"
        xmlns:pdf="http://ns.adobe.com/pdf/1.3/"
        xmlns:xmp="http://ns.adobe.com/xap/1.0/">
      <dc:title><rdf:Alt><rdf:li>Minimal PDF with Metadata</rdf:li></rdf:Alt></dc:title>
      <pdf:Producer>UnitTest PDF Generator</pdf:Producer>
      <xmp:CreateDate>2024-01-01</xmp:CreateDate>
      <xmp:ModifyDate>2024-01-02</xmp:ModifyDate>
    </rdf:Description>
  </rdf:RDF>
</x:xmpmeta>`

	r := documentWithXMP(t, xmp)

	xmpXML, err := r.readXMP()
	require.NoError(t, err)
	require.NotEmpty(t, xmpXML)

	got, ok := parseXMPWithXML(xmpXML)
	require.True(t, ok)
	assert.Equal(t, "Minimal PDF with Metadata", got.Title)
	assert.Equal(t, "UnitTest PDF Generator", got.Producer)
	assert.Equal(t, "2024-01-01", got.CreateDate)
	assert.Equal(t, "2024-01-02", got.ModifyDate)
}

func TestReadXMP_NoMetadataStreamReturnsEmpty(t *testing.T) {
	d := &docBuilder{}
	d.add("<< /Type /Catalog >>")
	data, _ := d.bytes(1)
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	xmpXML, err := r.readXMP()
	require.NoError(t, err)
	assert.Empty(t, xmpXML)
}

func TestParseXMPWithXML_Invalid(t *testing.T) {
	_, ok := parseXMPWithXML(`<xmpmeta><not-closed>`)
	assert.False(t, ok)
}

func TestParseXMPFallback(t *testing.T) {
	xmp := `
  <dc:title><rdf:li>Fallback Title</rdf:li></dc:title>
  <dc:creator><rdf:li>Fallback Creator</rdf:li></dc:creator>
  <dc:description><rdf:li>Fallback Subject</rdf:li></dc:description>
  <pdf:Keywords>k1,k2</pdf:Keywords>
  <xmp:CreatorTool>FallbackTool</xmp:CreatorTool>
  <pdf:Producer>FallbackProducer</pdf:Producer>
  <xmp:CreateDate>2021-04-05</xmp:CreateDate>
  <xmp:ModifyDate>2021-04-06</xmp:ModifyDate>
`
	got := parseXMPFallback(xmp)
	assert.Equal(t, "Fallback Title", got.Title)
	assert.Equal(t, "Fallback Creator", got.Creator)
	assert.Equal(t, "Fallback Subject", got.Subject)
	assert.Equal(t, "k1,k2", got.Keywords)
	assert.Equal(t, "FallbackTool", got.CreatorTool)
	assert.Equal(t, "FallbackProducer", got.Producer)
	assert.Equal(t, "2021-04-05", got.CreateDate)
	assert.Equal(t, "2021-04-06", got.ModifyDate)
}

func TestHeaderVersion(t *testing.T) {
	blob := []byte("junk\n%PDF-1.7\r\n%âãÏÓ\nrest of file")
	r := &Reader{f: bytes.NewReader(blob)}
	assert.Equal(t, "1.7", r.headerVersion())

	r2 := &Reader{f: bytes.NewReader([]byte("no pdf header here"))}
	assert.Equal(t, "", r2.headerVersion())
}

func TestMetadata_PrefersXMPOverInfoDict(t *testing.T) {
	const xmp = `<x:xmpmeta xmlns:x="adobe:ns:meta/">
  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
    <rdf:Description xmlns:dc="http://purl.org/dc/elements/1.1/">
      <dc:title><rdf:Alt><rdf:li>XMP Title</rdf:li></rdf:Alt></dc:title>
    </rdf:Description>
  </rdf:RDF>
</x:xmpmeta>`
	r := documentWithXMP(t, xmp)

	meta, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "XMP Title", meta.Title)
}

func TestMetadataFull_NoEncryptionGrantsAllPermissions(t *testing.T) {
	d := &docBuilder{}
	d.add("<< /Type /Catalog /Pages 2 0 R >>")
	d.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	d.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] >>")
	data, _ := d.bytes(1)
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	mf, err := r.MetadataFull()
	require.NoError(t, err)
	assert.False(t, mf.Encrypted)
	assert.True(t, mf.AccessPermission.CanPrint)
	assert.True(t, mf.AccessPermission.CanModify)
	assert.Equal(t, 1, mf.NPages)
}
