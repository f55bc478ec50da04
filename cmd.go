package lz

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// magic identifies the container format written by Compress.
var magic = []byte("hlz1")

// Compress losslessly compresses the file name and writes the result to w.
//
// The file's bytes are encoded with a hierarchical coder of the given
// capacity, learning as it goes. The output container holds the trained
// model snapshot followed by the token stream, each zstd-compressed.
// capacity must be at least 256 so that the root coder can be seeded with
// the full byte vocabulary.
func Compress(w io.Writer, name string, capacity int) error {
	if capacity < 256 {
		return errors.Wrapf(ErrConfig, "capacity %d cannot hold the byte vocabulary", capacity)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "")
	}

	coder, err := NewHierarchical(capacity, ByteVocab())
	if err != nil {
		return errors.Wrap(err, "")
	}
	tokens, err := coder.Encode(SymbolsFromBytes(data), true)
	if err != nil {
		return errors.Wrap(err, "")
	}
	model, err := coder.Snapshot()
	if err != nil {
		return errors.Wrap(err, "")
	}

	// Token frame: a uvarint count followed by one uvarint per token.
	// Tokens are shifted by one so that EmptyToken fits in a uvarint.
	frame := binary.AppendUvarint(nil, uint64(len(tokens)))
	for _, t := range tokens {
		frame = binary.AppendUvarint(frame, uint64(t+1))
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer enc.Close()

	buf := bytes.NewBuffer(nil)
	buf.Write(magic)
	for _, section := range [][]byte{model, frame} {
		compressed := enc.EncodeAll(section, nil)
		buf.Write(binary.AppendUvarint(nil, uint64(len(compressed))))
		buf.Write(compressed)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Decompress reads a container written by Compress from r and writes the
// original file contents to w.
func Decompress(w io.Writer, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if !bytes.HasPrefix(data, magic) {
		return errors.Errorf("bad magic")
	}
	data = data[len(magic):]

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer dec.Close()

	sections := make([][]byte, 2)
	for i := range sections {
		n, sz := binary.Uvarint(data)
		if sz <= 0 || uint64(len(data)-sz) < n {
			return errors.Errorf("truncated section header")
		}
		section, err := dec.DecodeAll(data[sz:sz+int(n)], nil)
		if err != nil {
			return errors.Wrap(err, "")
		}
		sections[i] = section
		data = data[sz+int(n):]
	}
	model, frame := sections[0], sections[1]

	coder, err := RestoreHierarchical(model)
	if err != nil {
		return errors.Wrap(err, "")
	}

	count, sz := binary.Uvarint(frame)
	if sz <= 0 {
		return errors.Errorf("truncated token frame")
	}
	frame = frame[sz:]
	tokens := make([]Token, 0, count)
	for i := uint64(0); i < count; i++ {
		v, sz := binary.Uvarint(frame)
		if sz <= 0 {
			return errors.Errorf("truncated token frame")
		}
		tokens = append(tokens, Token(v)-1)
		frame = frame[sz:]
	}

	decoded, err := coder.Decode(tokens)
	if err != nil {
		return errors.Wrap(err, "")
	}
	out := make([]byte, len(decoded))
	for i, s := range decoded {
		if s < 0 || s > 255 {
			return errors.Errorf("decoded symbol %d is not a byte", s)
		}
		out[i] = byte(s)
	}
	if _, err := w.Write(out); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
