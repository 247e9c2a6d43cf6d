// Package registry provides the central "glue" between statement keywords and
// the statement supports that give them meaning.
//
// The Registry maps every keyword QName to exactly one support. Bundles of
// supports are packaged as Modules: the RFC 7950 statements form one bundle,
// vendor extensions such as the OpenConfig semantic version or the NETCONF
// access control annotations form others.
//
// During application startup, the registry is populated and then validated to
// ensure that the bootstrap statements every source needs are present and
// that every substatement rule names a keyword some support serves.
package registry
