package model

import "sort"

// Keywords is the vocabulary of a program: every command word and flag
// name it declares, deduplicated and sorted.
type Keywords struct {
	Program     string   `json:"base_program" yaml:"base_program"`
	Commands    []string `json:"commands" yaml:"commands"`
	Subcommands []string `json:"subcommands" yaml:"subcommands"`
	ShortFlags  []string `json:"short_flags" yaml:"short_flags"`
	LongFlags   []string `json:"long_flags" yaml:"long_flags"`
	Summary     Summary  `json:"summary" yaml:"summary"`
}

// Summary holds keyword counts, unique and total.
type Summary struct {
	UniqueKeywords    int `json:"unique_keywords_count" yaml:"unique_keywords_count"`
	UniqueCommands    int `json:"unique_command_count" yaml:"unique_command_count"`
	UniqueSubcommands int `json:"unique_subcommand_count" yaml:"unique_subcommand_count"`
	UniqueShortFlags  int `json:"unique_short_flag_count" yaml:"unique_short_flag_count"`
	UniqueLongFlags   int `json:"unique_long_flag_count" yaml:"unique_long_flag_count"`
	TotalCommands     int `json:"total_command_count" yaml:"total_command_count"`
	TotalSubcommands  int `json:"total_subcommand_count" yaml:"total_subcommand_count"`
	TotalShortFlags   int `json:"total_short_flag_count" yaml:"total_short_flag_count"`
	TotalLongFlags    int `json:"total_long_flag_count" yaml:"total_long_flag_count"`
}

// ExtractKeywords collects the keywords of tree. Depth-1 nodes count as
// commands, deeper nodes as subcommands. Flags are returned with dashes.
func ExtractKeywords(tree *CommandNode) *Keywords {
	commands := map[string]struct{}{}
	subcommands := map[string]struct{}{}
	shorts := map[string]struct{}{}
	longs := map[string]struct{}{}
	var s Summary

	tree.Walk(func(n *CommandNode) bool {
		switch {
		case n.Depth == 1:
			commands[n.Name] = struct{}{}
			s.TotalCommands++
		case n.Depth > 1:
			subcommands[n.Name] = struct{}{}
			s.TotalSubcommands++
		}
		for _, f := range n.Children.Flag {
			if f.Short != "" {
				shorts["-"+f.Short] = struct{}{}
				s.TotalShortFlags++
			}
			if f.Long != "" {
				longs["--"+f.Long] = struct{}{}
				s.TotalLongFlags++
			}
		}
		return true
	})

	k := &Keywords{
		Program:     tree.Name,
		Commands:    sortedKeys(commands),
		Subcommands: sortedKeys(subcommands),
		ShortFlags:  sortedKeys(shorts),
		LongFlags:   sortedKeys(longs),
	}

	all := map[string]struct{}{}
	for _, set := range []map[string]struct{}{commands, subcommands, shorts, longs} {
		for key := range set {
			all[key] = struct{}{}
		}
	}
	s.UniqueKeywords = len(all)
	s.UniqueCommands = len(commands)
	s.UniqueSubcommands = len(subcommands)
	s.UniqueShortFlags = len(shorts)
	s.UniqueLongFlags = len(longs)
	k.Summary = s

	return k
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
