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

package catalog

import "fmt"

// Change is one difference between two catalogs.
type Change struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (c Change) String() string { return c.Name + ": " + c.Reason }

// Drift compares a stored catalog with the current one and reports layout
// changes that were not accompanied by a version bump, versions going
// backwards, and types added or removed. Pending entries carry no layout
// and are only checked for presence. Neither catalog needs to be sorted.
func Drift(stored, current Catalog) []Change {
	curByName := byName(current)
	var out []Change
	for _, old := range stored.Entries {
		cur, ok := curByName[old.Name]
		if !ok {
			out = append(out, Change{old.Name, "removed"})
			continue
		}
		if old.Pending || cur.Pending {
			continue
		}
		switch {
		case cur.Version < old.Version:
			out = append(out, Change{old.Name, fmt.Sprintf("version went back from %d to %d", old.Version, cur.Version)})
		case cur.Checksum != old.Checksum && cur.Version == old.Version:
			out = append(out, Change{old.Name, fmt.Sprintf("layout changed without a version bump (still %d)", cur.Version)})
		case cur.Checksum != old.Checksum && !hasRule(cur, old.Version):
			out = append(out, Change{old.Name, fmt.Sprintf("no read rule for stored version %d", old.Version)})
		}
	}
	oldByName := byName(stored)
	for _, cur := range current.Entries {
		if _, ok := oldByName[cur.Name]; !ok {
			out = append(out, Change{cur.Name, "added"})
		}
	}
	return out
}

func hasRule(e Entry, version int) bool {
	for _, v := range e.ReadRules {
		if v == version {
			return true
		}
	}
	return false
}

func byName(c Catalog) map[string]Entry {
	m := make(map[string]Entry, len(c.Entries))
	for _, e := range c.Entries {
		m[e.Name] = e
	}
	return m
}
