package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionCurrent = 1

// Encode serializes a ledger row into the compact binary form stored in
// Redis. Layout: version byte, row ID, user ID, length-prefixed key,
// created-at, expires-at. Integers are big-endian int64.
func Encode(s *Session) ([]byte, error) {
	if len(s.Key) == 0 || len(s.Key) > 255 {
		return nil, errors.New("invalid session key length")
	}

	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if err := binary.Write(&buf, binary.BigEndian, s.ID); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.UserID); err != nil {
		return nil, err
	}

	buf.WriteByte(byte(len(s.Key)))
	buf.WriteString(s.Key)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a stored blob back into a Session. Unknown versions and
// truncated blobs are rejected; a corrupt row must never pass for a
// valid one.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	if err := binary.Read(reader, binary.BigEndian, &s.ID); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.UserID); err != nil {
		return nil, err
	}

	keyLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if keyLen == 0 {
		return nil, errors.New("invalid session key length")
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	s.Key = string(key)

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing session data")
	}

	return s, nil
}
