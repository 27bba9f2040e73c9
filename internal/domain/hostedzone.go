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
	"sort"
	"strings"

	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/route53"
)

// resolveHostedZoneID selects the Route53 hosted zone the domain's alias
// records go into. An explicit id wins without a remote call. Otherwise the
// most specific zone whose name is a label-aligned suffix of the requested
// domain wins; candidates are ordered by raw name length descending before
// matching, so ties fall to list order.
func (m *Manager) resolveHostedZoneID(d DomainConfig) (string, error) {
	if d.HostedZoneID != "" {
		m.logger.Info("using hosted zone id from configuration", map[string]interface{}{
			"domain":       d.GivenDomainName,
			"hostedZoneId": d.HostedZoneID,
		})

		return d.HostedZoneID, nil
	}

	zones, err := m.listHostedZones()
	if err != nil {
		return "", errors.WrapIff(err, "could not list hosted zones for domain %q", d.GivenDomainName)
	}

	candidates := make([]*route53.HostedZone, 0, len(zones))
	for _, zone := range zones {
		if d.HostedZonePrivate != nil {
			private := zone.Config != nil && aws.BoolValue(zone.Config.PrivateZone)
			if private != *d.HostedZonePrivate {
				continue
			}
		}

		candidates = append(candidates, zone)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return len(aws.StringValue(candidates[i].Name)) > len(aws.StringValue(candidates[j].Name))
	})

	domainLabels := reverseLabels(d.GivenDomainName)

	for _, zone := range candidates {
		zoneName := strings.TrimSuffix(aws.StringValue(zone.Name), ".")
		if zoneMatches(domainLabels, reverseLabels(zoneName)) {
			return shortHostedZoneID(aws.StringValue(zone.Id)), nil
		}
	}

	return "", errors.Errorf("could not find hosted zone for domain %q", d.GivenDomainName)
}

func (m *Manager) listHostedZones() ([]*route53.HostedZone, error) {
	var zones []*route53.HostedZone

	input := &route53.ListHostedZonesInput{}

	for {
		out, err := m.route53Svc.ListHostedZones(input)
		if err != nil {
			return nil, err
		}

		zones = append(zones, out.HostedZones...)

		if !aws.BoolValue(out.IsTruncated) {
			break
		}
		input.Marker = out.NextMarker
	}

	return zones, nil
}

// zoneMatches tests that the zone name is a suffix of the requested domain,
// aligned on label boundaries. A single-label domain matches any zone.
func zoneMatches(domainLabels, zoneLabels []string) bool {
	if len(domainLabels) == 1 {
		return true
	}

	if len(domainLabels) < len(zoneLabels) {
		return false
	}

	for i := range zoneLabels {
		if domainLabels[i] != zoneLabels[i] {
			return false
		}
	}

	return true
}

func reverseLabels(name string) []string {
	labels := strings.Split(name, ".")

	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}

	return labels
}

// shortHostedZoneID strips the resource path prefix from a fully qualified
// hosted zone id ("/hostedzone/ABC123" becomes "ABC123").
func shortHostedZoneID(id string) string {
	if i := strings.Index(id, "e/"); i >= 0 {
		return id[i+2:]
	}

	return id
}

// changeAliasRecords submits one atomic change batch containing the A and
// AAAA alias records of the domain, both pointing at the gateway
// distribution target.
func (m *Manager) changeAliasRecords(d DomainConfig, info DomainInfo, action RecordAction) error {
	if !d.recordEnabled() {
		m.logger.Info("Route53 record management is disabled, skipping record change", map[string]interface{}{
			"domain": d.GivenDomainName,
		})

		return nil
	}

	zoneID, err := m.resolveHostedZoneID(d)
	if err != nil {
		return err
	}

	recordTypes := []string{route53.RRTypeA, route53.RRTypeAaaa}

	changes := make([]*route53.Change, 0, len(recordTypes))
	for _, recordType := range recordTypes {
		changes = append(changes, &route53.Change{
			Action: aws.String(string(action)),
			ResourceRecordSet: &route53.ResourceRecordSet{
				Name: aws.String(d.GivenDomainName),
				Type: aws.String(recordType),
				AliasTarget: &route53.AliasTarget{
					DNSName:              aws.String(info.DomainName),
					HostedZoneId:         aws.String(info.HostedZoneID),
					EvaluateTargetHealth: aws.Bool(false),
				},
			},
		})
	}

	_, err = m.route53Svc.ChangeResourceRecordSets(&route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &route53.ChangeBatch{
			Comment: aws.String("Managed by gateway-domain-manager"),
			Changes: changes,
		},
	})

	return errors.WrapIff(err, "failed to change Route53 records of domain %q", d.GivenDomainName)
}
