// Package obslog centralizes the leveled, structured logging every package
// in this module uses for its own diagnostics. It carries no behavior of its
// own: nothing here changes what a codec or container decides to do, only
// what it reports while doing it.
package obslog

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Base is the root logger every component derives from. For copies Base at
// the moment it is called, and the afs, prs and texture packages call For
// while initializing their package variables, so replacing Base afterwards
// does not change what those packages log; only loggers obtained from For
// after the replacement use the new Base.
var Base = log.Logger

// For returns a child logger tagged with the calling component's name, e.g.
// obslog.For("afs") or obslog.For("prs").
func For(component string) zerolog.Logger {
	return Base.With().Str("component", component).Logger()
}
