package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes frames for one socket
type Codec interface {
	Name() string
	// MessageType is the websocket frame type the codec writes
	MessageType() int
	Encode(w io.Writer, v interface{}) error
	Decode(r io.Reader, v interface{}) error
}

// JSON is the default text codec
var JSON Codec = jsonCodec{}

// Msgpack is the binary codec. It honours json struct tags so both codecs
// produce the same field names.
var Msgpack Codec = msgpackCodec{}

// CodecByName resolves a ?codec= query value; empty selects JSON
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return Msgpack, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string     { return "json" }
func (jsonCodec) MessageType() int { return websocket.TextMessage }

func (jsonCodec) Encode(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

func (jsonCodec) Decode(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string     { return "msgpack" }
func (msgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(w io.Writer, v interface{}) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	enc.SetOmitEmpty(true)
	return enc.Encode(v)
}

func (msgpackCodec) Decode(r io.Reader, v interface{}) error {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// Marshal encodes v into a byte slice with c
func Marshal(c Codec, v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data with c
func Unmarshal(c Codec, data []byte, v interface{}) error {
	return c.Decode(bytes.NewReader(data), v)
}
