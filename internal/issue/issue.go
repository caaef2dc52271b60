// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/invowk/monorepo/pkg/manifest"
)

const (
	GlobMatchFailedId Id = iota + 1
	ManifestParseFailedId
	ConfigurationInvalidId
	TypeMismatchId
	DownloadFailedId
	ManifestWriteFailedId
	ConfigLoadFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown using the glamour style at
// stylePath ("" selects "dark").
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = func(in, stylePath string) (string, error) {
		if stylePath == "" {
			stylePath = "dark"
		}
		return glamour.Render(in, stylePath)
	}

	globMatchFailedIssue = &Issue{
		id: GlobMatchFailedId,
		mdMsg: `
# An include pattern matched no manifest!

Every pattern in ` + "`extra.modera-monorepo.include`" + ` must select at least one
file. A pattern that matches nothing usually means a member was moved,
renamed or deleted, so the update is aborted instead of silently dropping it.

## Things you can try:
- Check the pattern printed above against the source tree:
~~~
$ ls packages/*/composer.json
~~~
- Patterns are relative to the directory of the root manifest
- ` + "`**`" + ` matches any number of directories, ` + "`{a,b}`" + ` matches alternatives`,
		extLinks: []HttpLink{"https://github.com/bmatcuk/doublestar#patterns"},
	}

	manifestParseFailedIssue = &Issue{
		id: ManifestParseFailedId,
		mdMsg: `
# A manifest is not valid JSON!

The file reported above could not be parsed. Nothing was registered and the
root manifest was not modified.

## Things you can try:
- Look for trailing commas and unquoted keys near the reported offset
- Validate the file:
~~~
$ python3 -m json.tool packages/a/composer.json
~~~`,
	}

	configurationInvalidIssue = &Issue{
		id: ConfigurationInvalidId,
		mdMsg: `
# The monorepo configuration is invalid!

The root manifest must carry an ` + "`extra.modera-monorepo`" + ` object with a
non-empty ` + "`include`" + ` list.

## Expected shape:
~~~json
{
    "extra": {
        "modera-monorepo": {
            "include": ["packages/*/composer.json"],
            "require": {"php": ">=8.1"},
            "require-dev": {"phpunit/phpunit": "^10"}
        }
    }
}
~~~`,
	}

	typeMismatchIssue = &Issue{
		id: TypeMismatchId,
		mdMsg: `
# A manifest has an unexpected shape!

The file is valid JSON but a field does not have the type a package manifest
requires. Each member needs a non-empty ` + "`name`" + `, and ` + "`require`" + `,
` + "`require-dev`" + `, ` + "`replace`" + ` and ` + "`extra`" + ` must be objects of strings.

## Things you can try:
- Fix the field named in the message above
- Make sure no two members declare the same ` + "`name`",
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# A registry member could not be downloaded!

A required package carries its own monorepo configuration, so its sources are
fetched to read the member manifests.

## Things you can try:
- Check your network connection and git credentials
- Clear the git cache directory (` + "`git.cache_dir`" + `) and retry`,
	}

	manifestWriteFailedIssue = &Issue{
		id: ManifestWriteFailedId,
		mdMsg: `
# The root manifest could not be written!

The merged requirements were computed but patching the root manifest failed.
The file is replaced atomically, so it still holds its previous content.

## Things you can try:
- Check write permissions on the manifest and its directory
- Run with ` + "`--dry-run`" + ` to preview the merge`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration!

The configuration file exists but could not be read or validated.

## Things you can try:
- Show the effective configuration:
~~~
$ monorepo config show
~~~
- Check the CUE syntax of the file passed with ` + "`--config`",
	}

	issues = map[Id]*Issue{
		globMatchFailedIssue.Id():      globMatchFailedIssue,
		manifestParseFailedIssue.Id():  manifestParseFailedIssue,
		configurationInvalidIssue.Id(): configurationInvalidIssue,
		typeMismatchIssue.Id():         typeMismatchIssue,
		downloadFailedIssue.Id():       downloadFailedIssue,
		manifestWriteFailedIssue.Id():  manifestWriteFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForError returns the catalog entry explaining err, or nil.
func ForError(err error) *Issue {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, manifest.ErrGlobMatch):
		return Get(GlobMatchFailedId)
	case errors.Is(err, manifest.ErrManifestParse):
		return Get(ManifestParseFailedId)
	case errors.Is(err, manifest.ErrConfiguration):
		return Get(ConfigurationInvalidId)
	case errors.Is(err, manifest.ErrTypeMismatch):
		return Get(TypeMismatchId)
	}

	var ae *ActionableError
	if errors.As(err, &ae) {
		switch ae.Operation {
		case OpLoadRegistryMembers:
			return Get(DownloadFailedId)
		case OpWriteRootManifest:
			return Get(ManifestWriteFailedId)
		case OpLoadConfig:
			return Get(ConfigLoadFailedId)
		}
	}
	return nil
}

// Operation names shared by the code that raises an ActionableError and
// ForError.
const (
	OpLoadRegistryMembers = "load registry members"
	OpWriteRootManifest   = "write root manifest"
	OpLoadConfig          = "load configuration"
	OpWatchManifests      = "watch manifests"
)
