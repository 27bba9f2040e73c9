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
	"emperror.dev/errors"
)

// fetchDomainInfo looks up the remote custom domain resource. A nil result
// means the resource does not exist, which is a valid state and not an
// error.
func (m *Manager) fetchDomainInfo(d DomainConfig) (*DomainInfo, error) {
	endpoint, err := m.endpointFor(d)
	if err != nil {
		return nil, err
	}

	info, err := endpoint.getDomain(d.GivenDomainName)

	return info, errors.WrapIff(err, "failed to fetch status of domain %q", d.GivenDomainName)
}

// createDomain provisions the custom domain resource and its alias records.
// The remote side propagates DNS and TLS state asynchronously, which can
// take up to 40 minutes; this returns as soon as the creation call succeeds.
func (m *Manager) createDomain(d DomainConfig) error {
	info, err := m.fetchDomainInfo(d)
	if err != nil {
		return err
	}

	if info != nil {
		m.logger.Info("custom domain already exists, skipping creation", map[string]interface{}{
			"domain": d.GivenDomainName,
		})

		return nil
	}

	certificateARN, err := m.resolveCertificateARN(d)
	if err != nil {
		return err
	}

	endpoint, err := m.endpointFor(d)
	if err != nil {
		return err
	}

	info, err = endpoint.createDomain(d, certificateARN)
	if err != nil {
		return err
	}

	m.logger.Info("custom domain created, DNS propagation can take up to 40 minutes", map[string]interface{}{
		"domain": d.GivenDomainName,
		"target": info.DomainName,
	})

	return m.changeAliasRecords(d, *info, RecordActionUpsert)
}

// deleteDomain removes the custom domain resource and its alias records.
// Deleting a domain that does not exist is a no-op.
func (m *Manager) deleteDomain(d DomainConfig) error {
	info, err := m.fetchDomainInfo(d)
	if err != nil {
		return err
	}

	if info == nil {
		m.logger.Info("custom domain does not exist, nothing to delete", map[string]interface{}{
			"domain": d.GivenDomainName,
		})

		return nil
	}

	endpoint, err := m.endpointFor(d)
	if err != nil {
		return err
	}

	if err := endpoint.deleteDomain(d.GivenDomainName); err != nil {
		return err
	}

	m.logger.Info("custom domain deleted", map[string]interface{}{"domain": d.GivenDomainName})

	return m.changeAliasRecords(d, *info, RecordActionDelete)
}
