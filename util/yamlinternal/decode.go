// Copyright (c) 2024 RELEX Oy
// Copyright (c) 2011-2019 Canonical Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package yamlinternal reaches into the decoder of gopkg.in/yaml.v3 to decode nodes with options unavailable
// from its public API
package yamlinternal

import (
	"fmt"
	"reflect"

	_ "unsafe" // for go:linkname

	"gopkg.in/yaml.v3"
)

// decoder mirrors the layout of the unexported decoder in gopkg.in/yaml.v3 v3.0.1 (decode.go)
//
// Fields must stay in the same order up to knownFields, or the flag would be written to a wrong offset.
//
//lint:ignore U1000 fields are only here for their offsets
type decoder struct {
	doc     *yaml.Node
	aliases map[*yaml.Node]bool
	terrors []string

	stringMapType  reflect.Type
	generalMapType reflect.Type

	knownFields bool
	uniqueKeys  bool
	decodeCount int
	aliasCount  int
	aliasDepth  int

	mergedFields map[interface{}]bool
}

//go:linkname handleErr gopkg.in/yaml%2ev3.handleErr
func handleErr(err *error)

//go:linkname newDecoder gopkg.in/yaml%2ev3.newDecoder
func newDecoder() *decoder

//go:linkname unmarshal gopkg.in/yaml%2ev3.(*decoder).unmarshal
func unmarshal(d *decoder, n *yaml.Node, out reflect.Value) (good bool)

// DecodeNodeKnownFields works like yaml.Node.Decode with KnownFields(true): keys without matching struct fields are
// reported as errors
//
// The node is decoded in place, so aliases to anchors defined elsewhere in the document keep resolving.
func DecodeNodeKnownFields(node *yaml.Node, output interface{}) (err error) {
	d := newDecoder()
	d.knownFields = true
	defer handleErr(&err)

	out := reflect.ValueOf(output)
	if out.Kind() == reflect.Ptr && !out.IsNil() {
		out = out.Elem()
	}
	good := unmarshal(d, node, out)
	if len(d.terrors) > 0 {
		return &yaml.TypeError{Errors: d.terrors}
	}
	if !good {
		return fmt.Errorf("cannot decode %s node at line %d", node.ShortTag(), node.Line)
	}
	return nil
}
