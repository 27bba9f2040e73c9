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

package domain

// validateDomains checks every enabled domain configuration before any
// remote call is made. A single invalid domain aborts the whole operation.
func (m *Manager) validateDomains() error {
	for _, d := range m.enabledDomains() {
		if err := d.Validate(); err != nil {
			return err
		}

		if d.AllowPathMatching {
			m.logger.Warn("allowPathMatching is enabled, mappings may be matched by base path instead of API id", map[string]interface{}{
				"domain": d.GivenDomainName,
			})
		}
	}

	return nil
}
