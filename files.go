// Copyright 2025 EngFlow Inc. All rights reserved.
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

package chdr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// resolveHeader locates name against searchPaths in order (§6's
// header_search_paths), returning the first match. name itself is tried
// first as a direct (absolute or working-directory-relative) path, then
// each search path is joined with name: a plain directory entry is checked
// with os.Stat, while an entry containing glob metacharacters (e.g.
// "vendor/**/include") is expanded with doublestar.FilepathGlob and the
// first resulting match is used.
func resolveHeader(name string, searchPaths []string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	for _, sp := range searchPaths {
		candidate := filepath.Join(sp, name)
		if !strings.ContainsAny(sp, "*?[") {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(candidate)
		if err != nil || len(matches) == 0 {
			continue
		}
		return matches[0], nil
	}

	return "", fmt.Errorf("chdr: header %q not found (search paths: %v)", name, searchPaths)
}
