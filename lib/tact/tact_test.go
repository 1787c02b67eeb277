// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package tact

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ohchase/blizztools/lib/hashid"
)

const versionsDocument = `Region!STRING:0|BuildConfig!HEX:16|CDNConfig!HEX:16|KeyRing!HEX:16|BuildId!DEC:4|VersionsName!String:0|ProductConfig!HEX:16
## seqn = 2891736
us|2d0a1b9fb4f8d1c8a09c8b1e6a2ef1b2|8f2d4c1b0e7a6d5c4b3a29180716f5e4||54988|11.0.2.54988|53020d32e1a25648c8e1eafd5771935f
eu|2D0A1B9FB4F8D1C8A09C8B1E6A2EF1B2|8f2d4c1b0e7a6d5c4b3a29180716f5e4|3ca57fe7319a297346440e4d2a03a0cd|54988|11.0.2.54988|53020d32e1a25648c8e1eafd5771935f

`

func TestParseVersionTable(t *testing.T) {
	table, err := ParseVersionTable(versionsDocument)
	if err != nil {
		t.Fatalf("ParseVersionTable: %v", err)
	}
	if table.Seqn != 2891736 {
		t.Errorf("Seqn = %d, want 2891736", table.Seqn)
	}
	if len(table.Versions) != 2 {
		t.Fatalf("decoded %d versions, want 2", len(table.Versions))
	}

	us := table.Versions[0]
	want := Version{
		Region:        "us",
		BuildConfig:   hashid.MustParse("2d0a1b9fb4f8d1c8a09c8b1e6a2ef1b2"),
		CDNConfig:     hashid.MustParse("8f2d4c1b0e7a6d5c4b3a29180716f5e4"),
		BuildID:       "54988",
		VersionsName:  "11.0.2.54988",
		ProductConfig: hashid.MustParse("53020d32e1a25648c8e1eafd5771935f"),
	}
	if us != want {
		t.Errorf("Versions[0] = %+v, want %+v", us, want)
	}
	if !us.KeyRing.IsNull() {
		t.Errorf("empty key ring parsed as %s", us.KeyRing)
	}

	eu, ok := table.Region("eu")
	if !ok {
		t.Fatal("Region(eu) not found")
	}
	if eu.BuildConfig != us.BuildConfig {
		t.Errorf("upper-case build config = %s, want %s", eu.BuildConfig, us.BuildConfig)
	}
	if eu.KeyRing != hashid.MustParse("3ca57fe7319a297346440e4d2a03a0cd") {
		t.Errorf("KeyRing = %s", eu.KeyRing)
	}
	if _, ok := table.Region("kr"); ok {
		t.Error("Region(kr) found")
	}
}

func TestParseVersionTableErrors(t *testing.T) {
	tests := []struct {
		name     string
		document string
		line     int
	}{
		{name: "empty", document: "\n\n"},
		{name: "missing column", document: "Region!STRING:0|BuildConfig!HEX:16\nus|2d0a1b9fb4f8d1c8a09c8b1e6a2ef1b2\n"},
		{
			name:     "short row",
			document: strings.SplitN(versionsDocument, "\n", 2)[0] + "\nus|2d0a1b9fb4f8d1c8a09c8b1e6a2ef1b2\n",
			line:     2,
		},
		{
			name:     "bad build config",
			document: strings.SplitN(versionsDocument, "\n", 2)[0] + "\n## seqn = 1\nus|nothex|8f2d4c1b0e7a6d5c4b3a29180716f5e4||1|1.0|53020d32e1a25648c8e1eafd5771935f\n",
			line:     3,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseVersionTable(test.document)
			var parseError *ParseError
			if !errors.As(err, &parseError) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if parseError.Line != test.line {
				t.Errorf("Line = %d, want %d", parseError.Line, test.line)
			}
		})
	}
}

const cdnsDocument = `Name!STRING:0|Path!STRING:0|Hosts!STRING:0|Servers!STRING:0|ConfigPath!STRING:0
## seqn = 2890402
us|tpr/wow|level3.blizzard.com us.cdn.blizzard.com|http://level3.blizzard.com/?maxhosts=4 http://us.cdn.blizzard.com/?maxhosts=4|tpr/configs/data
eu|tpr/wow|eu.cdn.blizzard.com level3.blizzard.com|http://eu.cdn.blizzard.com/?maxhosts=4|tpr/configs/data
`

func TestParseCDNTable(t *testing.T) {
	table, err := ParseCDNTable(cdnsDocument)
	if err != nil {
		t.Fatalf("ParseCDNTable: %v", err)
	}
	if table.Seqn != 2890402 || len(table.CDNs) != 2 {
		t.Fatalf("table = %+v", table)
	}
	us := table.CDNs[0]
	if us.Name != "us" || us.Path != "tpr/wow" || us.ConfigPath != "tpr/configs/data" {
		t.Errorf("CDNs[0] = %+v", us)
	}
	if !reflect.DeepEqual(us.Hosts, []string{"level3.blizzard.com", "us.cdn.blizzard.com"}) {
		t.Errorf("Hosts = %q", us.Hosts)
	}
	if len(us.Servers) != 2 || us.Servers[1] != "http://us.cdn.blizzard.com/?maxhosts=4" {
		t.Errorf("Servers = %q", us.Servers)
	}

	eu, ok := table.Region("eu")
	if !ok || eu.Hosts[0] != "eu.cdn.blizzard.com" {
		t.Errorf("Region(eu) = %+v, %v", eu, ok)
	}
}

func TestParseCDNTableWithoutServers(t *testing.T) {
	document := "Name!STRING:0|Path!STRING:0|Hosts!STRING:0|ConfigPath!STRING:0\nus|tpr/wow|a.example b.example|tpr/configs/data\n"
	table, err := ParseCDNTable(document)
	if err != nil {
		t.Fatalf("ParseCDNTable: %v", err)
	}
	if len(table.CDNs) != 1 || table.CDNs[0].Servers != nil || len(table.CDNs[0].Hosts) != 2 {
		t.Errorf("CDNs = %+v", table.CDNs)
	}
}

const buildConfigDocument = `# Build Configuration

root = 74260639df2c36f256dec1dc99007dee
install = cb771e4587a2e7d3df2aa0a0802a1fc9 5707c55346b2bdffdc12587673ca6e78
install-size = 17491 16957
download = 742820d6e2a8e08c657b2f6402f5beb3 0ee936e6e1c5eda32dad6e133eb24b02
download-size = 9391314 8189832
size = 04b685919f85d762322f635a207d85d2 1a98c149a20d884fe4a6d6ec507b0dcd
size-size = 6043993 5280643
encoding = 81d6b3444dbb7113f69c7625361dbb91 9ea78760c2cfe3c9c3ccd42bf2057f95
encoding-size = 23840656 23805555
build-name = WOW-54988patch11.0.2_Retail
`

func TestParseBuildConfig(t *testing.T) {
	build, err := ParseBuildConfig(buildConfigDocument)
	if err != nil {
		t.Fatalf("ParseBuildConfig: %v", err)
	}
	if build.Root != hashid.MustParse("74260639df2c36f256dec1dc99007dee") {
		t.Errorf("Root = %s", build.Root)
	}
	if build.Encoding.Content() != hashid.MustParse("81d6b3444dbb7113f69c7625361dbb91") {
		t.Errorf("Encoding.Content() = %s", build.Encoding.Content())
	}
	if build.Encoding.Encoded() != hashid.MustParse("9ea78760c2cfe3c9c3ccd42bf2057f95") {
		t.Errorf("Encoding.Encoded() = %s", build.Encoding.Encoded())
	}
	if build.Install.Encoded() != hashid.MustParse("5707c55346b2bdffdc12587673ca6e78") {
		t.Errorf("Install.Encoded() = %s", build.Install.Encoded())
	}
	if build.Download.Content() != hashid.MustParse("742820d6e2a8e08c657b2f6402f5beb3") {
		t.Errorf("Download.Content() = %s", build.Download.Content())
	}
	if build.EncodingSize != (SizePair{23840656, 23805555}) {
		t.Errorf("EncodingSize = %v", build.EncodingSize)
	}
	if build.Size.Encoded() != hashid.MustParse("1a98c149a20d884fe4a6d6ec507b0dcd") {
		t.Errorf("Size.Encoded() = %s", build.Size.Encoded())
	}
	if build.BuildName != "WOW-54988patch11.0.2_Retail" {
		t.Errorf("BuildName = %q", build.BuildName)
	}
	if keys := build.Raw.Keys(); len(keys) != 10 || keys[0] != "root" {
		t.Errorf("Keys() = %q", keys)
	}
}

func TestParseBuildConfigOrderIndependent(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(buildConfigDocument), "\n")
	reversed := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		reversed = append(reversed, lines[i])
	}

	forward, err := ParseBuildConfig(buildConfigDocument)
	if err != nil {
		t.Fatal(err)
	}
	backward, err := ParseBuildConfig(strings.Join(reversed, "\n"))
	if err != nil {
		t.Fatalf("ParseBuildConfig(reversed): %v", err)
	}
	forward.Raw, backward.Raw = nil, nil
	if !reflect.DeepEqual(forward, backward) {
		t.Errorf("reversed = %+v, want %+v", backward, forward)
	}
}

func TestParseBuildConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		remove  string
		replace string
		missing bool
	}{
		{name: "missing encoding", remove: "encoding = ", missing: true},
		{name: "missing root", remove: "root = ", missing: true},
		{name: "single install key", remove: "install = ", replace: "install = cb771e4587a2e7d3df2aa0a0802a1fc9"},
		{name: "bad hash", remove: "download = ", replace: "download = zz 0ee936e6e1c5eda32dad6e133eb24b02"},
		{name: "bad size", remove: "encoding-size = ", replace: "encoding-size = 12 big"},
		{name: "no separator", remove: "root = ", replace: "root 74260639df2c36f256dec1dc99007dee"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var lines []string
			for _, line := range strings.Split(buildConfigDocument, "\n") {
				if strings.HasPrefix(line, test.remove) {
					if test.replace != "" {
						lines = append(lines, test.replace)
					}
					continue
				}
				lines = append(lines, line)
			}
			_, err := ParseBuildConfig(strings.Join(lines, "\n"))
			var parseError *ParseError
			if !errors.As(err, &parseError) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if test.missing != errors.Is(err, ErrMissingKey) {
				t.Errorf("errors.Is(err, ErrMissingKey) = %v, want %v", !test.missing, test.missing)
			}
		})
	}
}

func TestParseCDNConfig(t *testing.T) {
	document := `# CDN Configuration

archives = 0017a402f556fbece46c38dc431a2c9b 003b147730a109e3a480d32a54280955
archive-group = 58a3f5a08cf8e0e4a9d7f1d0e2f2b9b1
file-index = 1e73f6ff2a2e2e5ab8b1bd4f7c1f6d4b
`
	config, err := ParseCDNConfig(document)
	if err != nil {
		t.Fatalf("ParseCDNConfig: %v", err)
	}
	if len(config.Archives) != 2 || config.Archives[1] != hashid.MustParse("003b147730a109e3a480d32a54280955") {
		t.Errorf("Archives = %v", config.Archives)
	}
	if config.ArchiveGroup.IsNull() || config.FileIndex.IsNull() {
		t.Errorf("config = %+v", config)
	}

	empty, err := ParseCDNConfig("# CDN Configuration\n")
	if err != nil || empty.Archives != nil {
		t.Errorf("ParseCDNConfig(empty) = %+v, %v", empty, err)
	}
}

func TestParseProduct(t *testing.T) {
	for _, product := range Products {
		if parsed, err := ParseProduct(string(product)); err != nil || parsed != product {
			t.Errorf("ParseProduct(%q) = %q, %v", product, parsed, err)
		}
	}
	if _, err := ParseProduct("d3"); err == nil {
		t.Error("ParseProduct accepted an unknown product")
	}
}
