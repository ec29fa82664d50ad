// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

const (
	UVNotFoundId Id = iota + 1
	FolderNotFoundId
	ScriptNotFoundId
	LaunchFailedId
	TimeoutExceededId
	ConfigLoadFailedId
	InvalidSecretsId
	RunnerProtocolBrokenId
	PermissionDeniedId
)

type (
	// Id identifies an entry in the issue catalog.
	Id int

	// MarkdownMsg is the Markdown guidance shown for an issue.
	MarkdownMsg string

	// HttpLink is a documentation link attached to an issue.
	HttpLink string

	// Issue is a catalog entry with remediation guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
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

// Render renders the guidance with glamour using the named style
// ("auto", "dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- " + string(link)
		}
		for _, link := range i.extLinks {
			extraMd += "\n- " + string(link)
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	uvNotFoundIssue = &Issue{
		id: UVNotFoundId,
		mdMsg: `
# uv is not installed!

Every function runs in an isolated environment created by ` + "`uv run`" + `,
and the uv executable could not be found.

## Things you can try:
- Install uv:
~~~
$ curl -LsSf https://astral.sh/uv/install.sh | sh
~~~

- Make sure uv is on your PATH, or point supypowers at it:
~~~cue
uv: binary: "/opt/uv/bin/uv"
~~~`,
		extLinks: []HttpLink{"https://docs.astral.sh/uv/getting-started/installation/"},
	}

	folderNotFoundIssue = &Issue{
		id: FolderNotFoundId,
		mdMsg: `
# Folder not found!

The first argument must be an existing directory containing your scripts.

## Things you can try:
- Check the spelling of the folder path
- Create a starter folder:
~~~
$ mkdir tools && supypowers tools init
~~~`,
	}

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found!

Targets use the form ` + "`script:function`" + `. The script name is resolved
inside the folder, and ` + "`.py`" + ` is appended when missing.

## Things you can try:
- List the scripts supypowers can see:
~~~
$ supypowers <folder> docs --format md
~~~`,
	}

	launchFailedIssue = &Issue{
		id: LaunchFailedId,
		mdMsg: `
# The script could not be run!

` + "`uv run`" + ` exited without producing a result. The script failed to import,
or one of its dependencies could not be installed.

## Things you can try:
- Check the ` + "`uv_stderr`" + ` field of the result for the traceback
- Verify the ` + "`# /// script`" + ` block lists every dependency
- Run the script directly:
~~~
$ uv run --no-project path/to/script.py
~~~`,
	}

	timeoutExceededIssue = &Issue{
		id: TimeoutExceededId,
		mdMsg: `
# Execution timed out!

The child process was killed after exceeding the execution timeout.

## Things you can try:
- Raise the limit for one run:
~~~
$ supypowers <folder> run script:function '{}' --timeout 15m
~~~

- Or set it in your configuration:
~~~cue
execution: timeout: "15m"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file is not valid CUE or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ supypowers config show
~~~

- Durations are strings such as "30s" or "5m"
- Unknown keys are rejected`,
	}

	invalidSecretsIssue = &Issue{
		id: InvalidSecretsId,
		mdMsg: `
# Invalid --secrets value!

Each --secrets value must be the path of an existing dotenv file or an
inline KEY=VALUE pair.

## Examples:
~~~
$ supypowers tools run api:fetch '{}' --secrets .env --secrets API_KEY=abc
~~~`,
	}

	runnerProtocolBrokenIssue = &Issue{
		id: RunnerProtocolBrokenId,
		mdMsg: `
# The runner did not emit valid JSON!

The script exited cleanly but its output could not be decoded. Output larger
than the capture limit is truncated, which also breaks decoding.

## Things you can try:
- Raise ` + "`execution: max_output_bytes`" + ` in your configuration
- Avoid writing to stdout from native extensions during import`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Things you can try:
- Check file and directory permissions
- Run supypowers from a directory you own`,
	}

	issues = map[Id]*Issue{
		uvNotFoundIssue.Id():           uvNotFoundIssue,
		folderNotFoundIssue.Id():       folderNotFoundIssue,
		scriptNotFoundIssue.Id():       scriptNotFoundIssue,
		launchFailedIssue.Id():         launchFailedIssue,
		timeoutExceededIssue.Id():      timeoutExceededIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidSecretsIssue.Id():       invalidSecretsIssue,
		runnerProtocolBrokenIssue.Id(): runnerProtocolBrokenIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
