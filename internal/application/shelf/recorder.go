package shelf

// Recorder receives shelf and storage events for metrics.
type Recorder interface {
	// Mutation counts one mutating call by store, operation and outcome.
	Mutation(store, op, result string)
	// StorageFailure counts a failed storage call; kind is "unavailable", "decode" or "io".
	StorageFailure(op, kind string)
	// SubscribersChanged reports a change in the number of live subscribers.
	SubscribersChanged(delta int)
	// ExternalChange counts a record reloaded because another writer changed it.
	ExternalChange()
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Mutation(string, string, string) {}
func (NopRecorder) StorageFailure(string, string)   {}
func (NopRecorder) SubscribersChanged(int)          {}
func (NopRecorder) ExternalChange()                 {}
