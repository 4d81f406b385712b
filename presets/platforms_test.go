// Copyright 2026 EngFlow Inc. All rights reserved.
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

package presets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdr-project/chdr/internal/macro"
)

func TestCreateAcceptsAliases(t *testing.T) {
	p, err := Create(OS("macos"), Arch("arm64"))
	require.NoError(t, err)
	assert.Equal(t, Platform{OS: osx, Arch: aarch64}, p)
}

func TestCreateRejectsUnknownOS(t *testing.T) {
	_, err := Create(OS("beos"), Arch("x86_64"))
	assert.Error(t, err)
}

func TestLinuxAmd64EnvSeedsKnownMacros(t *testing.T) {
	p, err := Create(OS("linux"), Arch("amd64"))
	require.NoError(t, err)

	env, ok := KnownPlatformEnv[p]
	require.True(t, ok)
	assert.Contains(t, env, "__linux__")
	assert.Contains(t, env, "__x86_64__")
}

func TestEnvironmentSeedDefinesObjectLikeMacros(t *testing.T) {
	env := Environment{"FOO": 42}
	tbl := macro.NewTable()
	env.Seed(tbl)

	body, ok := tbl.Expand("FOO")
	require.True(t, ok)
	require.Len(t, body, 1)
	assert.Equal(t, "42", body[0].Content)
}

func TestPlatformStringFormat(t *testing.T) {
	p := Platform{OS: linux, Arch: x86_64}
	assert.Equal(t, "linux/x86_64", p.String())
}

func TestCompareOrdersByOSThenArch(t *testing.T) {
	a := Platform{OS: linux, Arch: aarch64}
	b := Platform{OS: linux, Arch: x86_64}
	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
	assert.Zero(t, Compare(a, a))
}
