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

// Package catalog renders registry contents for diagnostics and docs.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"sigs.k8s.io/yaml"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/descriptor"
)

// Catalog is a sorted, serializable snapshot of a registry.
type Catalog struct {
	Entries []Entry `json:"entries"`
}

// Entry describes one registered type.
type Entry struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	GoType    string   `json:"goType,omitempty"`
	Pending   bool     `json:"pending,omitempty"`
	Version   int      `json:"version"`
	Kind      string   `json:"kind,omitempty"`
	Modifiers string   `json:"modifiers,omitempty"`
	Size      uint64   `json:"size,omitempty"`
	Checksum  string   `json:"checksum,omitempty"`
	Bases     []string `json:"bases,omitempty"`
	Members   []Member `json:"members,omitempty"`
	ReadRules []int    `json:"readRules,omitempty"`
	Streamer  bool     `json:"customStreamer,omitempty"`
	Decl      string   `json:"decl,omitempty"`
	Impl      string   `json:"impl,omitempty"`
}

// Member describes one data member of an Entry.
type Member struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Modifiers string `json:"modifiers,omitempty"`
	Since     int    `json:"since,omitempty"`
	Until     int    `json:"until,omitempty"`
}

// Snapshot captures reg sorted by name. Pending entries are listed without
// materializing them.
func Snapshot(reg apis.Registry) Catalog {
	raw := reg.Entries()
	out := Catalog{Entries: make([]Entry, 0, len(raw))}
	for _, e := range raw {
		out.Entries = append(out.Entries, entryOf(e))
	}
	sort.Slice(out.Entries, func(i, j int) bool { return out.Entries[i].Name < out.Entries[j].Name })
	return out
}

func entryOf(e apis.Entry) Entry {
	ce := Entry{Name: e.Identity.Name, Aliases: e.Aliases, Pending: e.Pending(), Version: apis.Unversioned}
	if e.Identity.Type != nil {
		ce.GoType = e.Identity.Type.String()
	}
	d := e.Descriptor
	if d == nil {
		return ce
	}
	ce.Version = d.Version()
	ce.Kind = d.Kind().String()
	ce.Modifiers = d.Modifiers().String()
	ce.Size = uint64(d.Size())
	ce.Checksum = strconv.FormatUint(d.Checksum(), 16)
	ce.ReadRules = descriptor.RuleVersions(d)
	ce.Streamer = d.Streamer() != nil
	ce.Decl = location(d.DeclFile(), d.DeclLine())
	ce.Impl = location(d.ImplFile(), d.ImplLine())
	for _, b := range d.Bases() {
		ce.Bases = append(ce.Bases, b.Name)
	}
	for _, m := range d.Members() {
		ce.Members = append(ce.Members, Member{
			Name:      m.Name,
			Type:      m.Type.String(),
			Modifiers: m.Modifiers.String(),
			Since:     m.Since,
			Until:     m.Until,
		})
	}
	return ce
}

func location(file string, line int) string {
	switch {
	case file == "":
		return ""
	case line <= 0:
		return file
	default:
		return file + ":" + strconv.Itoa(line)
	}
}

// Lookup returns the entry with the given name.
func (c Catalog) Lookup(name string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// YAML renders c as YAML.
func (c Catalog) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// JSON renders c as indented JSON.
func (c Catalog) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Parse reads a catalog rendered by YAML or JSON.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("rdx(catalog): parse: %w", err)
	}
	sort.Slice(c.Entries, func(i, j int) bool { return c.Entries[i].Name < c.Entries[j].Name })
	return c, nil
}
