// Package profiles defines the three discovery document profiles and the
// static rule and count tables they are built from.
package profiles

import (
	"strings"

	"discovery-backend/models"
)

// Profile is one discovery document type. Implementations are immutable
// once loaded and safe for concurrent use.
type Profile interface {
	Type() models.ProfileType
	Name() string
	Template() string
	FilenameSuffix() string
	Rules() RuleTable
	Counts() CountTable
	FirstSetOnly() []string
	// GeneralFlag is set whenever any issue is selected; "" when the profile has none.
	GeneralFlag() string
	RoleFlags(d models.Defendant) []string
	// GeographyFlag returns the flag for city, or "" when the profile does not
	// use geography or the city is not listed.
	GeographyFlag(city string) string
}

// definition is the data every profile is loaded from.
type definition struct {
	typ          models.ProfileType
	name         string
	template     string
	suffix       string
	general      string
	rules        RuleTable
	counts       CountTable
	firstSetOnly []string
}

func (d *definition) Type() models.ProfileType { return d.typ }
func (d *definition) Name() string             { return d.name }
func (d *definition) Template() string         { return d.template }
func (d *definition) FilenameSuffix() string   { return d.suffix }
func (d *definition) Rules() RuleTable         { return d.rules }
func (d *definition) Counts() CountTable       { return d.counts }
func (d *definition) GeneralFlag() string      { return d.general }

func (d *definition) FirstSetOnly() []string {
	return append([]string(nil), d.firstSetOnly...)
}

// separateRoleFlags emits IsOwner and IsManager independently.
func separateRoleFlags(d models.Defendant) []string {
	var flags []string
	if d.IsOwner {
		flags = append(flags, FlagIsOwner)
	}
	if d.IsManager {
		flags = append(flags, FlagIsManager)
	}
	return flags
}

// SROGs is the Special Interrogatories profile.
type SROGs struct {
	definition
}

func (p *SROGs) RoleFlags(d models.Defendant) []string {
	return separateRoleFlags(d)
}

func (p *SROGs) GeographyFlag(string) string {
	return ""
}

// ProductionOfDocuments is the Requests for Production profile. It has no
// general flag and requests owner and manager documents as one block.
type ProductionOfDocuments struct {
	definition
}

func (p *ProductionOfDocuments) RoleFlags(d models.Defendant) []string {
	if d.IsOwner || d.IsManager {
		return []string{FlagIsOwnerManager}
	}
	return nil
}

func (p *ProductionOfDocuments) GeographyFlag(string) string {
	return ""
}

// Admissions is the Requests for Admissions profile.
type Admissions struct {
	definition
	geography map[string]string
}

func (p *Admissions) RoleFlags(d models.Defendant) []string {
	return separateRoleFlags(d)
}

func (p *Admissions) GeographyFlag(city string) string {
	return p.geography[strings.TrimSpace(city)]
}

var (
	_ Profile = (*SROGs)(nil)
	_ Profile = (*ProductionOfDocuments)(nil)
	_ Profile = (*Admissions)(nil)
)
