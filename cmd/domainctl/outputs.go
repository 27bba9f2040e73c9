// Copyright © 2021 Banzai Cloud
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

package main

import (
	"sync"

	"logur.dev/logur"
)

// outputRegistry collects the outputs reported during an operation. Domains
// are processed concurrently, so writes are synchronized.
type outputRegistry struct {
	mu      sync.Mutex
	outputs map[string]string
}

func newOutputRegistry() *outputRegistry {
	return &outputRegistry{
		outputs: make(map[string]string),
	}
}

// Set records a single output value under the given key.
func (r *outputRegistry) Set(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outputs[key] = value
}

// Report logs the collected outputs.
func (r *outputRegistry) Report(logger logur.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, value := range r.outputs {
		logger.Info("deployment output", map[string]interface{}{"key": key, "value": value})
	}
}
