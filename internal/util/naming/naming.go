package naming

import "fmt"

// KubeconfigFile is the local file the admin kubeconfig is written to.
const KubeconfigFile = "kubeconfig"

func KeyPair(user string) string {
	return user + "_key"
}

func MasterInstance(user string, ordinal int) string {
	return fmt.Sprintf("%s-master-%d", user, ordinal)
}

func SlaveInstance(user string, ordinal int) string {
	return fmt.Sprintf("%s-slave%d", user, ordinal)
}

// SlaveID returns the cluster-wide identifier of the ordinal-th worker.
func SlaveID(ordinal int) string {
	return fmt.Sprintf("slave%d", ordinal)
}

// PrivateNetwork names the private network attached to an access group.
func PrivateNetwork(group string) string {
	return group
}
