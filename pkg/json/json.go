// Package json wraps goccy/go-json with pooled buffers and a streaming
// array writer for table output.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

const (
	initialBufferSize = 4096
	maxPooledBuffer   = 1 << 20
	// flushThreshold is the buffered size at which an ArrayWriter writes through
	flushThreshold = 64 << 10
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
	},
}

// GetBuffer gets a reset buffer from the pool
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool. Very large buffers are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// NewDecoder returns a decoder reading from r
func NewDecoder(r io.Reader) *gojson.Decoder {
	return gojson.NewDecoder(r)
}

// EncodeIndent writes v to w as two-space indented JSON followed by a newline.
// HTML characters are not escaped.
func EncodeIndent(w io.Writer, v interface{}) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ArrayWriter streams pre-encoded elements as a single JSON array
type ArrayWriter struct {
	w     io.Writer
	buf   *bytes.Buffer
	count int
}

// NewArrayWriter starts an array on w. Close must be called to terminate it.
func NewArrayWriter(w io.Writer) *ArrayWriter {
	buf := GetBuffer()
	buf.WriteByte('[')
	return &ArrayWriter{w: w, buf: buf}
}

// WriteRaw appends one encoded element
func (a *ArrayWriter) WriteRaw(elem []byte) error {
	if a.count > 0 {
		a.buf.WriteByte(',')
	}
	a.buf.Write(elem)
	a.count++
	if a.buf.Len() >= flushThreshold {
		return a.flush()
	}
	return nil
}

// Len returns the number of elements written
func (a *ArrayWriter) Len() int { return a.count }

func (a *ArrayWriter) flush() error {
	_, err := a.w.Write(a.buf.Bytes())
	a.buf.Reset()
	return err
}

// Close terminates the array with a trailing newline and releases the buffer.
// It does not close the underlying writer.
func (a *ArrayWriter) Close() error {
	if a.buf == nil {
		return nil
	}
	a.buf.WriteString("]\n")
	err := a.flush()
	PutBuffer(a.buf)
	a.buf = nil
	return err
}
