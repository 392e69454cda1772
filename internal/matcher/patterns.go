package matcher

import "regexp"

// buildPatterns returns the pattern library in declaration order. Entries
// are written most-specific first: for any two entries sharing a required
// keyword, the earlier one has at least as many required keywords as the
// later one (specificity_test.go enforces this as a property test, not a
// runtime check — a violation here is a library bug, not a user-facing
// failure). The list itself is grounded in the commands this tool is
// most commonly asked to produce; it is not exhaustive.
func buildPatterns() []entry {
	return []entry{
		// required=4
		{
			required: []string{"find", "all", "file", "larger"},
			optional: []string{"1", "gb"},
			regex:    regexp.MustCompile(`(?i)^find\s+all\s+files?\s+(larger|bigger|over|above|greater).{0,40}1\s*(gb?|g)\b`),
			gnuCommand: `find . -type f -size +1G -exec ls -lh {} \;`,
			description: "find all files larger than 1GB, with exec",
		},

		// required=3
		{
			required:    []string{"python", "modified", "today"},
			optional:    []string{"find", "all", "files"},
			regex:       regexp.MustCompile(`(?i)(find|locate|search).{0,20}(python|\.py).{0,20}files?.{0,20}(modified|changed).{0,10}today`),
			gnuCommand:  `find . -name "*.py" -type f -mtime 0`,
			description: "find python files modified today",
		},
		{
			required:    []string{"python", "file", "week"},
			optional:    []string{"find", "last", "modified", "from"},
			regex:       regexp.MustCompile(`(?i)(find|locate|list|show).{0,20}(python|\.py).{0,20}files?.{0,20}(modified|changed|updated|from).{0,10}(last week|past week)`),
			gnuCommand:  `find . -name "*.py" -type f -mtime -7`,
			description: "find python files modified in the last week",
		},
		{
			required:    []string{"python", "file", "7"},
			optional:    []string{"find", "days", "modified", "from"},
			regex:       regexp.MustCompile(`(?i)(find|locate|search|python).{0,20}(python|py|\.py).{0,20}files?.{0,20}(modified|changed|from).{0,20}(7|seven).{0,10}days?`),
			gnuCommand:  `find . -name "*.py" -type f -mtime -7`,
			description: "find python files modified in the last 7 days",
		},
		{
			required:    []string{"disk", "directory", "sorted"},
			optional:    []string{"show", "by", "usage", "space"},
			regex:       regexp.MustCompile(`(?i)(show|display|list).{0,10}(me)?.{0,10}(disk|space).{0,10}(usage|use).{0,10}(directory|dir|folder).{0,10}(sorted|sort)`),
			gnuCommand:  `du -h --max-depth=1 | sort -hr`,
			bsdCommand:  `du -h -d 1 | sort -hr`,
			description: "show disk usage by directory, sorted",
		},
		{
			required:    []string{"disk", "space", "directory"},
			optional:    []string{"show", "by", "usage"},
			regex:       regexp.MustCompile(`(?i)(show|display|list|get).{0,10}(disk|storage).{0,10}(space|usage).{0,20}(directory|directories|dir)`),
			gnuCommand:  `du -h --max-depth=1`,
			bsdCommand:  `du -h -d 1`,
			description: "show disk space by directory",
		},

		// required=2
		{
			required:    []string{"file", "today"},
			optional:    []string{"list", "all", "modified", "changed"},
			regex:       regexp.MustCompile(`(?i)(list|show|find|get|files?).{0,20}(modified|changed|updated).{0,10}(today|last 24 hours?)`),
			gnuCommand:  `find . -type f -mtime 0`,
			description: "list files modified today",
		},
		{
			required:    []string{"file", "yesterday"},
			optional:    []string{"list", "all", "find", "modified", "changed"},
			regex:       regexp.MustCompile(`(?i)(list|show|find|get|files?).{0,20}(modified|changed|updated).{0,10}yesterday`),
			gnuCommand:  `find . -type f -mtime 1`,
			description: "list files modified yesterday",
		},
		{
			required:    []string{"pdf", "downloads"},
			optional:    []string{"find", "all", "files", "10", "mb", "larger"},
			regex:       regexp.MustCompile(`(?i)(find|locate|search).{0,10}(all)?.{0,10}pdf.{0,10}files?.{0,10}(larger|bigger|over).{0,10}(10|10mb|10m).{0,20}downloads`),
			gnuCommand:  `find ~/Downloads -name "*.pdf" -size +10M -ls`,
			description: "find PDF files larger than 10MB in Downloads",
		},
		{
			required:    []string{"file", "100"},
			optional:    []string{"find", "over", "mb", "large", "big", "bigger"},
			regex:       regexp.MustCompile(`(?i)(find|locate|show|list).{0,10}(large|big|bigger).{0,10}files?.{0,10}(over|above|bigger|greater|than).{0,10}(100|100mb|100m|megabyte)`),
			gnuCommand:  `find . -type f -size +100M`,
			description: "find large files over 100MB",
		},
		{
			required:    []string{"file", "10"},
			optional:    []string{"find", "larger", "bigger", "mb"},
			regex:       regexp.MustCompile(`(?i)(find|locate|list|show).{0,10}files?.{0,10}(larger|bigger|over|above|greater).{0,10}(10|10mb|10m)`),
			gnuCommand:  `find . -type f -size +10M`,
			description: "find files larger than 10MB",
		},
		{
			required:    []string{"file", "50"},
			optional:    []string{"find", "larger", "mb"},
			regex:       regexp.MustCompile(`(?i)(find|locate|list|show).{0,10}files?.{0,10}(larger|bigger|over|above|greater).{0,10}(50|50mb|50m)`),
			gnuCommand:  `find . -type f -size +50M`,
			description: "find files larger than 50MB",
		},
		{
			required:    []string{"disk", "folder"},
			optional:    []string{"show", "display", "by", "usage", "space", "used", "each"},
			regex:       regexp.MustCompile(`(?i)(show|display|list|get).{0,10}(disk|space).{0,10}(usage|size|used).{0,10}(folder|director)`),
			gnuCommand:  `du -sh */ | sort -rh | head -10`,
			description: "show disk usage by folder",
		},
		{
			required:    []string{"process", "memory"},
			optional:    []string{"top", "10", "consuming"},
			regex:       regexp.MustCompile(`(?i)(show|display|list|find).{0,10}(top|most).{0,10}(memory|mem|ram).{0,10}(consuming|using|hogging).{0,10}process`),
			gnuCommand:  `ps aux --sort=-%mem | head -n 11`,
			bsdCommand:  `ps aux -m | head -n 11`,
			description: "show top memory-consuming processes",
		},
		{
			required:    []string{"process", "port"},
			optional:    []string{"check", "using", "8080"},
			regex:       regexp.MustCompile(`(?i)(check|find|show|which).{0,10}(process|program|service).{0,10}(using|listening|on).{0,10}(port|:)\s*\d+`),
			gnuCommand:  `lsof -i :8080`,
			description: "check which process is using a port",
		},
		{
			required:    []string{"python", "import"},
			optional:    []string{"find", "files", "requests"},
			regex:       regexp.MustCompile(`(?i)(find|search|grep|locate).{0,10}(python|\.py).{0,10}files?.{0,10}(import|importing).{0,10}requests`),
			gnuCommand:  `grep -r 'import requests' --include='*.py'`,
			description: "find python files importing requests",
		},
		{
			required:    []string{"email", "extract"},
			optional:    []string{"addresses", "unique", "file"},
			regex:       regexp.MustCompile(`(?i)(extract|find|get|list).{0,10}(unique|all)?.{0,10}(email|e-mail).{0,10}(addresses?|addrs?)`),
			gnuCommand:  `grep -Eo '[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}' file.txt | sort -u`,
			description: "extract unique email addresses from a file",
		},
		{
			required:    []string{"compress", "directory"},
			optional:    []string{"tar", "transfer", "archive"},
			regex:       regexp.MustCompile(`(?i)(compress|archive|tar|zip).{0,10}(this|the)?.{0,10}(directory|folder|dir)`),
			gnuCommand:  `tar -czf archive.tar.gz directory/`,
			description: "compress a directory for transfer",
		},
		{
			required:    []string{"commits", "week"},
			optional:    []string{"show", "last", "git"},
			regex:       regexp.MustCompile(`(?i)(show|list|display|get|find).{0,10}(commits?|changes?).{0,10}(from|in|during).{0,10}(last|past).{0,10}(week|7 days?)`),
			gnuCommand:  `git log --since='1 week ago' --oneline`,
			description: "show commits from the last week",
		},

		// required=2, no regex, no optional: keyword-only match, reserved for
		// patterns whose signal is a fixed phrase rather than a loose shape.
		{
			required:    []string{"git", "status"},
			gnuCommand:  `git status`,
			description: "show git status",
		},
	}
}
