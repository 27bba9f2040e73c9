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

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// DomainSummaries refreshes the remote state of every enabled domain and
// prints a human readable summary. Domains that do not exist are noted in
// the log instead of the table.
func (m *Manager) DomainSummaries() error {
	rows := make([]table.Row, len(m.enabledDomains()))

	err := m.processDomains("describe", func(i int, d DomainConfig) error {
		info, err := m.fetchDomainInfo(d)
		if err != nil {
			return err
		}

		if info == nil {
			m.logger.Warn("unable to print summary, custom domain does not exist", map[string]interface{}{
				"domain": d.GivenDomainName,
			})

			return nil
		}

		rows[i] = table.Row{d.GivenDomainName, d.BasePath, info.DomainName, info.HostedZoneID}

		return nil
	})

	writer := table.NewWriter()
	writer.SetOutputMirror(m.out)
	writer.AppendHeader(table.Row{"Domain name", "Base path", "Target domain", "Hosted zone id"})

	for _, row := range rows {
		if row != nil {
			writer.AppendRow(row)
		}
	}

	writer.Render()

	return err
}
