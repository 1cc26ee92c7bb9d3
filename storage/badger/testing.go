// Copyright 2025 Poiesic Systems
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


package badger

import "github.com/poiesic/docvault/ai"

// NewMemoryVectorStore creates an in-memory vector store for testing and dry runs.
// Returns the store, its repository and backend. Caller must close the
// repository and backend when done.
func NewMemoryVectorStore(embedder ai.Embedder, opts ...StoreOption) (*VectorStore, *ChunkRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	repo, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	store, err := NewVectorStore(repo, embedder, opts...)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return store, repo, backend, nil
}
