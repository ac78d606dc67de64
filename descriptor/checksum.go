/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package descriptor

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"dirpx.dev/rdx/apis"
)

// layoutMember is the persisted-layout view of a member hashed by Checksum.
type layoutMember struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Modifiers string `json:"modifiers"`
	Since     int    `json:"since,omitempty"`
	Until     int    `json:"until,omitempty"`
}

// checksumOf hashes the canonical JSON (RFC 8785) form of the name and the
// member layout with FNV-64a. Offsets are excluded: they are a property of
// the build, not of the schema.
func checksumOf(name string, members []apis.Member) (uint64, error) {
	layout := struct {
		Name    string         `json:"name"`
		Members []layoutMember `json:"members"`
	}{Name: name, Members: make([]layoutMember, 0, len(members))}
	for _, m := range members {
		layout.Members = append(layout.Members, layoutMember{
			Name:      m.Name,
			Type:      m.Type.String(),
			Modifiers: m.Modifiers.String(),
			Since:     m.Since,
			Until:     m.Until,
		})
	}

	raw, err := json.Marshal(layout)
	if err != nil {
		return 0, fmt.Errorf("rdx(descriptor): checksum: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return 0, fmt.Errorf("rdx(descriptor): checksum: %w", err)
	}
	h := fnv.New64a()
	// fnv64 can never fail to write
	_, _ = h.Write(canonical)
	return h.Sum64(), nil
}
