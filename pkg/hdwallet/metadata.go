package hdwallet

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/algorand/go-codec/codec"
	"github.com/getkin/kin-openapi/openapi3"
)

// Encoding is the encoding of data passed to SignData.
type Encoding string

const (
	EncodingNone    Encoding = "none"
	EncodingBase64  Encoding = "base64"
	EncodingMsgpack Encoding = "msgpack"
)

// SignMetadata describes how data to sign is encoded and, optionally, the
// JSON schema its decoded form must satisfy.
type SignMetadata struct {
	Encoding Encoding
	Schema   json.RawMessage
}

// DefaultSignMetadata accepts any raw payload that is not domain separated
// as an Algorand transaction, program or multisig.
var DefaultSignMetadata = SignMetadata{Encoding: EncodingNone}

// algorandTags are the domain separation prefixes of messages that an
// Algorand node would accept as signed transactions, multisig accounts or
// logic.
var algorandTags = [][]byte{
	[]byte("TX"),
	[]byte("MX"),
	[]byte("Program"),
	[]byte("ProgData"),
	[]byte("progData"),
}

var msgpackHandle *codec.MsgpackHandle

func init() {
	msgpackHandle = new(codec.MsgpackHandle)
	msgpackHandle.RawToString = true
}

func hasAlgorandTag(data []byte) bool {
	for _, tag := range algorandTags {
		if bytes.HasPrefix(data, tag) {
			return true
		}
	}
	return false
}

// validateData returns false for data that cannot be safely signed as
// arbitrary data. It errors only if the metadata makes the check
// impossible.
func validateData(data []byte, metadata SignMetadata) (bool, error) {
	var schema *openapi3.Schema
	if len(metadata.Schema) > 0 {
		schema = new(openapi3.Schema)
		if err := json.Unmarshal(metadata.Schema, schema); err != nil {
			return false, fmt.Errorf("invalid schema: %w", err)
		}
	}

	if hasAlgorandTag(data) {
		return false, nil
	}

	var (
		decoded interface{}
		raw     []byte
	)
	switch metadata.Encoding {
	case EncodingNone, "":
		raw = data
	case EncodingBase64:
		buf, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return false, nil
		}
		raw = buf
	case EncodingMsgpack:
		var value interface{}
		if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(&value); err != nil {
			return false, nil
		}
		jsonValue, ok := toJSONValue(value)
		if !ok {
			return false, nil
		}
		if s, isString := jsonValue.(string); isString {
			raw = []byte(s)
		}
		decoded = jsonValue
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidEncoding, metadata.Encoding)
	}

	if hasAlgorandTag(raw) {
		return false, nil
	}

	if schema == nil {
		return true, nil
	}

	if decoded == nil {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return false, nil
		}
	}
	if err := schema.VisitJSON(decoded); err != nil {
		return false, nil
	}
	return true, nil
}

// toJSONValue converts a generic msgpack value into the shapes produced by
// encoding/json.
func toJSONValue(value interface{}) (interface{}, bool) {
	switch v := value.(type) {
	case nil, bool, string, float64:
		return v, true
	case []byte:
		return string(v), true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int:
		return float64(v), true
	case uint:
		return float64(v), true
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			converted, ok := toJSONValue(item)
			if !ok {
				return nil, false
			}
			out = append(out, converted)
		}
		return out, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			var name string
			switch k := key.(type) {
			case string:
				name = k
			case []byte:
				name = string(k)
			default:
				return nil, false
			}
			converted, ok := toJSONValue(item)
			if !ok {
				return nil, false
			}
			out[name] = converted
		}
		return out, true
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			converted, ok := toJSONValue(item)
			if !ok {
				return nil, false
			}
			out[key] = converted
		}
		return out, true
	default:
		return nil, false
	}
}
