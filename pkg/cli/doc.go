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

// Package cli implements the command-line interface for the clint tool.
//
// # Overview
//
// clint discovers the command hierarchy of another program by running it
// with help arguments and parsing what it prints. The resulting command
// tree can be saved, compared across versions, served over HTTP, or turned
// into a replica program that reproduces the same commands and flags.
//
// # Commands
//
// explore - Discover a command tree (alias: parse):
//
//	clint explore kubectl
//	clint explore git --max-depth 2 --output git.yaml --format yaml
//	clint explore ./mytool --args "--config dev.yaml" -o cm://tools/mytool
//
// Without --output the tree is written to out/<program>/<version>/parsed.json,
// using --tag instead of the reported version when set.
//
// replicate - Generate a replica program:
//
//	clint replicate --tree out/kubectl/v1.31.0/parsed.json --output ./kubectl-replica
//	clint replicate kubectl --output ./kubectl-replica --module example.com/kubectl
//	clint replicate --tree tree.json --dry-run
//	clint replicate --tree tree.json -o ./replica --push --registry ghcr.io --repository me/replica
//
// compare - Report differences between two trees:
//
//	clint compare --from v1/parsed.json --to v2/parsed.json
//	clint compare --from a.json --to b.json --help-diff --format yaml
//
// keywords - List every command word and flag name of a tree:
//
//	clint keywords --tree tree.json --format table
//
// serve - Serve a tree over HTTP:
//
//	clint serve --tree tree.json --port 8080
//
// # Global Flags
//
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
//	LOG_LEVEL          Set logging verbosity (debug, info, warn, error)
//	CLINT_MAX_DEPTH    Default for --max-depth
//	CLINT_BUDGET       Default for --budget
//	CLINT_WORKERS      Default for --workers
//	CLINT_TIMEOUT      Default for --timeout
//	KUBECONFIG         Path to kubeconfig file for cm:// targets
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//	2  Context canceled or timeout
//	3  compare found differences and --fail-on-change was set
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/clint/pkg/cli.version=1.0.0'"
package cli
