// Package zkregistry is a minimal stand-in for the zookeeper
// service-registration scaffolding spec.md §1 places out of scope for
// design. It exists so the zookeeper-hosts configuration key and the
// process lifecycle have a real, if
// log-only, consumer, without building a thrift/zookeeper client.
package zkregistry

import "github.com/sirupsen/logrus"

// Registry logs registration/deregistration against a configured
// zookeeper ensemble instead of performing them.
type Registry struct {
	hosts string
	log   *logrus.Logger
}

// New builds a Registry for the given comma-separated zookeeper hosts
// string. An empty hosts string means registration is disabled.
func New(hosts string, log *logrus.Logger) *Registry {
	return &Registry{hosts: hosts, log: log}
}

// Register announces this instance as available to serve persist
// jobs.
func (r *Registry) Register(serviceIdentity string) {
	if r.hosts == "" {
		return
	}
	r.log.WithFields(logrus.Fields{
		"zookeeper_hosts": r.hosts,
		"service":         serviceIdentity,
	}).Info("registered service instance (zkregistry no-op)")
}

// Deregister announces this instance is shutting down.
func (r *Registry) Deregister(serviceIdentity string) {
	if r.hosts == "" {
		return
	}
	r.log.WithFields(logrus.Fields{
		"zookeeper_hosts": r.hosts,
		"service":         serviceIdentity,
	}).Info("deregistered service instance (zkregistry no-op)")
}
