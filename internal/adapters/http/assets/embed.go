// Package assets embeds the site: the page shell, page and header
// fragments, the user roster, seed data and stylesheets.
package assets

import "embed"

// Site is rooted so that paths read views/pages/home.html, data/user.json, ...
//
//go:embed views data static
var Site embed.FS

// OpportunitiesPath is the seed file for the opportunity catalog.
const OpportunitiesPath = "data/opportunities.yaml"
