package pdfsrc

import "io"

// alphaReader filters an ASCII85-encoded stream down to valid alphabet
// bytes (zeroing anything else), and zeroes everything from the "~>"
// end-of-data marker onward. PDF content sometimes pads or wraps ASCII85
// data with bytes encoding/ascii85 itself rejects; this keeps the decoder
// fed only what it expects.
type alphaReader struct {
	r    io.Reader
	done bool
}

func newAlphaReader(r io.Reader) *alphaReader {
	return &alphaReader{r: r}
}

func (a *alphaReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	stop := -1
	for i := 0; i < n; i++ {
		if a.done {
			p[i] = 0
			continue
		}
		if stop < 0 && p[i] == '~' && i+1 < n && p[i+1] == '>' {
			stop = i
		}
		if stop >= 0 && i >= stop {
			p[i] = 0
			continue
		}
		if p[i] < '!' || p[i] > 'u' {
			p[i] = 0
		}
	}
	if stop >= 0 {
		a.done = true
	}
	return n, err
}
