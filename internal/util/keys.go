package util

// Key layout shared by every client of the keyspace. Other Redis clients read
// these names directly, so they must not change.

// InputsKey is the list of recorded inputs for operation name.
func InputsKey(name string) string { return name + ":inputs" }

// OutputsKey is the list of recorded outputs for operation name.
func OutputsKey(name string) string { return name + ":outputs" }

// CountKey is the access counter of a cached page.
func CountKey(url string) string { return "count:" + url }
