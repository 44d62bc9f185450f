// Package repository exposes the complete set of git operations as one facade.
//
// Every operation spawns git through gitcli.Runner. Remote operations accept an optional
// credentials.AuthSpec and run inside a credential bridge scope; failures surface as
// *gitcli.CommandError values whose Kind follows the stable taxonomy.
package repository
