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

// Output keys reported to the output registry. Keys get an API type suffix
// so that multiple API types can coexist in one deployment.
const (
	OutputDistributionDomainName = "DistributionDomainName"
	OutputDomainName             = "DomainName"
	OutputHostedZoneID           = "HostedZoneId"
)

// reportOutputs surfaces the resolved domain details to the output registry.
func (m *Manager) reportOutputs(d DomainConfig, info DomainInfo) error {
	if m.outputs == nil {
		return nil
	}

	suffix, err := d.APIType.outputSuffix()
	if err != nil {
		return err
	}

	m.outputs.Set(OutputDistributionDomainName+suffix, info.DomainName)
	m.outputs.Set(OutputDomainName+suffix, d.GivenDomainName)
	m.outputs.Set(OutputHostedZoneID+suffix, info.HostedZoneID)

	return nil
}
