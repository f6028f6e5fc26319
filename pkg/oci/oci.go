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

// Package oci packages a generated replica directory as an OCI artifact
// and pushes it to a registry.
//
// Packaging and pushing are separate steps: Package writes an OCI image
// layout next to the sources, and PushFromStore copies the tagged
// manifest from that layout to the remote repository. A packaged replica
// can therefore be inspected or pushed again without regenerating it.
package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/distribution/reference"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/NVIDIA/clint/pkg/defaults"
	"github.com/NVIDIA/clint/pkg/errors"
)

const (
	// ArtifactType identifies a replica artifact.
	ArtifactType = "application/vnd.nvidia.clint.replica.v1"

	// FileMediaType is the layer media type of each replica file.
	FileMediaType = "application/vnd.nvidia.clint.replica.file.v1"

	// DefaultTag is used when no tag is given.
	DefaultTag = "latest"

	// StoreDir is the OCI layout directory created inside OutputDir.
	StoreDir = ".oci"

	// reproducible manifests: the created annotation is fixed
	createdEpoch = "1970-01-01T00:00:00Z"
)

// PackageOptions configures Package.
type PackageOptions struct {
	SourceDir  string
	OutputDir  string
	Registry   string
	Repository string
	Tag        string

	// Annotations are added to the manifest.
	Annotations map[string]string
}

// PackageResult describes a packaged artifact.
type PackageResult struct {
	Reference string
	Digest    string
	StorePath string
	Files     []string
}

// PushOptions configures PushFromStore.
type PushOptions struct {
	Registry    string
	Repository  string
	Tag         string
	PlainHTTP   bool
	InsecureTLS bool
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Reference string
	Digest    string
}

// ValidateRegistryReference checks that registry and repository form a
// valid, fully qualified repository name.
func ValidateRegistryReference(registry, repository string) error {
	if registry == "" || repository == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "registry and repository are required")
	}
	_, err := parseRepository(registry, repository)
	return err
}

// Reference returns registry/repository:tag, using DefaultTag when tag
// is empty.
func Reference(registry, repository, tag string) (string, error) {
	named, err := parseRepository(registry, repository)
	if err != nil {
		return "", err
	}
	if tag == "" {
		tag = DefaultTag
	}
	tagged, err := reference.WithTag(named, tag)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid tag %q", tag), err)
	}
	return tagged.String(), nil
}

func parseRepository(registry, repository string) (reference.Named, error) {
	raw := strings.TrimSuffix(registry, "/") + "/" + strings.TrimPrefix(repository, "/")
	named, err := reference.ParseNamed(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid repository reference %q", raw), err)
	}
	if reference.Domain(named) != strings.TrimSuffix(registry, "/") {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("registry %q is not a valid registry host", registry))
	}
	return named, nil
}

// Package adds every regular file under SourceDir to an artifact manifest
// and stores it, tagged, in an OCI layout under OutputDir/.oci.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	ref, err := Reference(opts.Registry, opts.Repository, opts.Tag)
	if err != nil {
		return nil, err
	}
	tag := opts.Tag
	if tag == "" {
		tag = DefaultTag
	}

	files, err := listFiles(opts.SourceDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("no files to package in %s", opts.SourceDir))
	}

	src, err := file.New(opts.SourceDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to open file store", err)
	}
	defer src.Close()

	layers := make([]ocispec.Descriptor, 0, len(files))
	for _, name := range files {
		desc, addErr := src.Add(ctx, name, FileMediaType, name)
		if addErr != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to add %s", name), addErr)
		}
		layers = append(layers, desc)
	}

	annotations := map[string]string{ocispec.AnnotationCreated: createdEpoch}
	for k, v := range opts.Annotations {
		annotations[k] = v
	}

	manifest, err := oras.PackManifest(ctx, src, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := src.Tag(ctx, manifest, tag); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to tag manifest", err)
	}

	storePath := filepath.Join(opts.OutputDir, StoreDir)
	dst, err := oci.New(storePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to open OCI layout", err)
	}
	if _, err := oras.Copy(ctx, src, tag, dst, tag, oras.DefaultCopyOptions); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write OCI layout", err)
	}

	slog.Debug("packaged artifact",
		slog.String("reference", ref),
		slog.String("digest", manifest.Digest.String()),
		slog.Int("files", len(files)))

	return &PackageResult{
		Reference: ref,
		Digest:    manifest.Digest.String(),
		StorePath: storePath,
		Files:     files,
	}, nil
}

// listFiles returns the slash-separated relative paths of the regular
// files under dir, skipping the OCI layout directory and hidden entries.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to read %s", dir), err)
	}
	sort.Strings(files)
	return files, nil
}

// PushFromStore copies the tagged artifact from the OCI layout at
// storePath to the remote repository. Credentials come from the Docker
// credential configuration.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	ref, err := Reference(opts.Registry, opts.Repository, opts.Tag)
	if err != nil {
		return nil, err
	}
	tag := opts.Tag
	if tag == "" {
		tag = DefaultTag
	}

	if _, statErr := os.Stat(filepath.Join(storePath, ocispec.ImageLayoutFile)); statErr != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("no OCI layout at %s", storePath), statErr)
	}
	store, err := oci.NewWithContext(ctx, storePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to open OCI layout %s", storePath), err)
	}

	named, err := parseRepository(opts.Registry, opts.Repository)
	if err != nil {
		return nil, err
	}
	repo, err := remote.NewRepository(named.Name())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to create repository client", err)
	}
	repo.PlainHTTP = opts.PlainHTTP

	client, err := authClient(opts.InsecureTLS)
	if err != nil {
		return nil, err
	}
	repo.Client = client

	ctx, cancel := context.WithTimeout(ctx, defaults.RegistryPushTimeout)
	defer cancel()

	desc, err := oras.Copy(ctx, store, tag, repo, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, fmt.Sprintf("failed to push %s", ref), err)
	}

	return &PushResult{
		Reference: ref,
		Digest:    desc.Digest.String(),
	}, nil
}

func authClient(insecureTLS bool) (*auth.Client, error) {
	httpClient := retry.DefaultClient
	if insecureTLS {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for local registries
		httpClient = &http.Client{Transport: retry.NewTransport(transport)}
	}

	c := &auth.Client{
		Client: httpClient,
		Cache:  auth.NewCache(),
	}

	store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Warn("docker credentials unavailable, pushing anonymously", slog.String("error", err.Error()))
		return c, nil
	}
	c.Credential = credentials.Credential(store)
	return c, nil
}
