// Package document reads and rewrites the JSON filter and settings documents
// consumed by the catalog app. Documents are kept as ordered trees so that
// rewriting one entry leaves every other byte of the file where it was.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value *Node
}

// Node is a JSON value. Numbers keep their original text.
type Node struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	String  string
	Items   []*Node
	Members []Member
}

func NewString(s string) *Node {
	return &Node{Kind: KindString, String: s}
}

func NewStringArray(values []string) *Node {
	items := make([]*Node, len(values))
	for i, v := range values {
		items[i] = NewString(v)
	}
	return &Node{Kind: KindArray, Items: items}
}

// Get returns the value stored under key, nil if n is not an object or does
// not have the key.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// GetString returns the string under key, ok is false when missing or not a
// string.
func (n *Node) GetString(key string) (string, bool) {
	v := n.Get(key)
	if v == nil || v.Kind != KindString {
		return "", false
	}
	return v.String, true
}

// Set replaces the value under key in place, or appends the key at the end
// of the object when it is not there yet.
func (n *Node) Set(key string, value *Node) {
	if n.Kind != KindObject {
		panic(fmt.Sprintf("document: Set(%q) on non-object node", key))
	}
	for i, m := range n.Members {
		if m.Key == key {
			n.Members[i].Value = value
			return
		}
	}
	n.Members = append(n.Members, Member{Key: key, Value: value})
}

// Strings returns the elements of an array of strings.
func (n *Node) Strings() ([]string, bool) {
	if n == nil || n.Kind != KindArray {
		return nil, false
	}
	out := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		if item.Kind != KindString {
			return nil, false
		}
		out = append(out, item.String)
	}
	return out, true
}

// Parse decodes a single JSON value from data, preserving object key order.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("document: trailing data after top-level value")
	}
	return node, nil
}

func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case nil:
		return &Node{Kind: KindNull}, nil
	case bool:
		return &Node{Kind: KindBool, Bool: v}, nil
	case json.Number:
		return &Node{Kind: KindNumber, Number: v}, nil
	case string:
		return NewString(v), nil
	case json.Delim:
		switch v {
		case '[':
			return parseArray(dec)
		case '{':
			return parseObject(dec)
		}
	}
	return nil, fmt.Errorf("document: unexpected token %v", tok)
}

func parseArray(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindArray, Items: []*Node{}}
	for dec.More() {
		item, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, item)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func parseObject(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindObject, Members: []Member{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("document: object key is not a string: %v", tok)
		}
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.Members = append(node.Members, Member{Key: key, Value: value})
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}
