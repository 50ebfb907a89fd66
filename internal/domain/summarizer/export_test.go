package summarizer

// SetIDGenerator replaces the session id source of a service built by NewService.
func SetIDGenerator(svc Service, gen func() string) {
	svc.(*service).newID = gen
}
