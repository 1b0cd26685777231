// Package dotconf is a read-only registry of configuration files addressed by
// dotted keys.
//
// Files are looked up by identifier on an ordered list of search roots
// ({root}/{id}{ext}, first match wins), parsed once (YAML by default, or JSON
// when the extension is .json), and cached for the lifetime of the Registry.
// A key such as "user.email.company" loads user.yml on first use and walks
// email -> company inside it:
//
//	r := dotconf.New(dotconf.WithSearchPaths("app/config", "sys/config"))
//	email, err := r.Get("user.email.company")
//	if err != nil {
//	    log.Fatal(err) // missing file, malformed file or malformed key
//	}
//	sex, _ := r.Get("user.sex", "male") // missing keys fall back to the default
//
// Package-level functions (Load, Get, SetSearchPaths, ...) operate on a
// process-wide registry returned by Default. Prefer passing a *Registry to
// the code that needs it; the package-level functions exist for scripts and
// main packages.
//
// The registry never watches files. Call Invalidate or Reset to make it read
// a file again.
package dotconf
