package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"dirsort/internal/errors"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// codec encodes and decodes a Record in one on-disk format.
type codec interface {
	Marshal(rec Record) ([]byte, error)
	Unmarshal(data []byte, rec *Record) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(rec Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (jsonCodec) Unmarshal(data []byte, rec *Record) error {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return decodeInto(doc, rec)
}

type yamlCodec struct{}

func (yamlCodec) Marshal(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (yamlCodec) Unmarshal(data []byte, rec *Record) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	return decodeInto(doc, rec)
}

type tomlCodec struct{}

func (tomlCodec) Marshal(rec Record) ([]byte, error) {
	return toml.Marshal(rec)
}

func (tomlCodec) Unmarshal(data []byte, rec *Record) error {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	return decodeInto(doc, rec)
}

func decodeInto(doc map[string]interface{}, rec *Record) error {
	decoded, err := recordFromMap(doc)
	if err != nil {
		return err
	}
	*rec = decoded
	return nil
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec{}, nil
	case ".yaml", ".yml":
		return yamlCodec{}, nil
	case ".toml":
		return tomlCodec{}, nil
	}
	return nil, errors.NewConfigError("unsupported config file extension", path, errors.InvalidConfig, nil)
}
