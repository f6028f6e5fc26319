// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package model defines the command tree produced by exploring a CLI.
//
// The JSON encoding of CommandNode is the persisted interchange format
// consumed by renderers and the replica generator, so field names and
// nesting are stable:
//
//	{
//	  "name": "toolA",
//	  "version": "1.0.0",
//	  "depth": 0,
//	  "command_path": "toolA",
//	  "children": {
//	    "COMMAND": {"sub1": {...}},
//	    "FLAG": [{"short": "h", "long": "help", ...}],
//	    "USAGE": [{"usage_string": "...", "components": [...]}],
//	    "OTHER": [{"line_contents": "...", "parent_header": "root"}]
//	  }
//	}
package model

// RootHeader tags lines that appeared before any section header.
const RootHeader = "root"

// UnknownVersion is the root version when the program does not report one.
const UnknownVersion = "Unknown"

// Invocation keys used in CommandNode.Outputs.
const (
	OutputHelpPage       = "help_page"
	OutputHelpSubcommand = "help_subcommand"
	OutputHelpShort      = "help_short"
	OutputVersion        = "version"
)

// ComponentType is the kind of a UsageComponent.
type ComponentType string

const (
	ComponentFlag             ComponentType = "Flag"
	ComponentArgument         ComponentType = "Argument"
	ComponentKeyword          ComponentType = "Keyword"
	ComponentGroup            ComponentType = "Group"
	ComponentAlternativeGroup ComponentType = "AlternativeGroup"
	ComponentKeyValuePair     ComponentType = "KeyValuePair"
)

// CommandNode is one command in the explored hierarchy.
type CommandNode struct {
	Name         string             `json:"name" yaml:"name"`
	Description  string             `json:"description,omitempty" yaml:"description,omitempty"`
	Parent       string             `json:"parent,omitempty" yaml:"parent,omitempty"`
	ParentHeader string             `json:"parent_header,omitempty" yaml:"parent_header,omitempty"`
	Version      string             `json:"version,omitempty" yaml:"version,omitempty"`
	Depth        int                `json:"depth" yaml:"depth"`
	CommandPath  string             `json:"command_path" yaml:"command_path"`
	Outputs      map[string]*Output `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Warnings     []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Children     Children           `json:"children" yaml:"children"`
}

// Children holds the four classified buckets of a node.
type Children struct {
	Command map[string]*CommandNode `json:"COMMAND" yaml:"COMMAND"`
	Flag    []Flag                  `json:"FLAG" yaml:"FLAG"`
	Usage   []Usage                 `json:"USAGE" yaml:"USAGE"`
	Other   []OtherLine             `json:"OTHER" yaml:"OTHER"`
}

// Output is the captured result of one invocation of the target.
type Output struct {
	Stdout string `json:"stdout" yaml:"stdout"`
	Stderr string `json:"stderr" yaml:"stderr"`
	Status int    `json:"status" yaml:"status"`
}

// Flag is an option declared in a help page. Names are stored without dashes.
type Flag struct {
	Short        string `json:"short,omitempty" yaml:"short,omitempty"`
	Long         string `json:"long,omitempty" yaml:"long,omitempty"`
	DataType     string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Default      string `json:"default,omitempty" yaml:"default,omitempty"`
	Required     *bool  `json:"required,omitempty" yaml:"required,omitempty"`
	ParentHeader string `json:"parent_header" yaml:"parent_header"`
}

// FlagKey is the identity of a flag within one node.
type FlagKey struct {
	Long  string
	Short string
}

// Usage is one usage line and its parsed grammar.
type Usage struct {
	UsageString  string           `json:"usage_string" yaml:"usage_string"`
	ParentHeader string           `json:"parent_header" yaml:"parent_header"`
	Components   []UsageComponent `json:"components" yaml:"components"`
}

// UsageComponent is a node of a parsed usage grammar.
// Alternatives is set only for AlternativeGroup, Children only for
// Group, KeyValuePair and key/value flags.
type UsageComponent struct {
	ComponentType ComponentType    `json:"component_type" yaml:"component_type"`
	Name          string           `json:"name" yaml:"name"`
	Required      bool             `json:"required" yaml:"required"`
	Repeatable    bool             `json:"repeatable" yaml:"repeatable"`
	KeyValue      bool             `json:"key_value" yaml:"key_value"`
	Alternatives  []UsageComponent `json:"alternatives" yaml:"alternatives"`
	Children      []UsageComponent `json:"children" yaml:"children"`
}

// OtherLine is a help line that no section classified.
type OtherLine struct {
	LineContents string `json:"line_contents" yaml:"line_contents"`
	ParentHeader string `json:"parent_header" yaml:"parent_header"`
}
