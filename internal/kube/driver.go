// Package kube is the driver for the managed Kubernetes deployments: query
// a named deployment in a namespace and scale its replica count.
package kube

import (
	"context"
	"fmt"

	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// WorkloadStatus is the driver's view of one deployment. A deployment that
// does not exist is Exists=false, never an error, so a partially torn-down
// environment can still be reported.
type WorkloadStatus struct {
	Namespace string
	Exists    bool
	Available bool
	Reason    string
	Replicas  int32
}

// Driver queries and scales deployments through the typed clientset.
type Driver struct {
	clientset kubernetes.Interface
}

// NewDriver builds a driver from in-cluster configuration when running
// inside a pod, falling back to the given kubeconfig path (or the default
// loading rules when the path is empty).
func NewDriver(kubeconfigPath string) (*Driver, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		if kubeconfigPath != "" {
			loadingRules.ExplicitPath = kubeconfigPath
		}
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			loadingRules, &clientcmd.ConfigOverrides{}).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		logging.Info("DeploymentDriver", "Using kubeconfig configuration")
	} else {
		logging.Info("DeploymentDriver", "Using in-cluster service account configuration")
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}
	return &Driver{clientset: clientset}, nil
}

// NewDriverWithClientset creates a driver over an existing clientset, used
// by tests to substitute a fake.
func NewDriverWithClientset(clientset kubernetes.Interface) *Driver {
	return &Driver{clientset: clientset}
}

// Describe returns the status of the named deployment. NotFound degrades to
// Exists=false; other API errors propagate.
func (d *Driver) Describe(ctx context.Context, name, namespace string) (WorkloadStatus, error) {
	status := WorkloadStatus{Namespace: namespace}

	dep, err := d.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			logging.Info("DeploymentDriver", "Deployment %s/%s not found", namespace, name)
			return status, nil
		}
		return WorkloadStatus{}, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}

	status.Exists = true
	if dep.Spec.Replicas != nil {
		status.Replicas = *dep.Spec.Replicas
	}

	// A deployment scaled to zero has no meaningful Available condition.
	if status.Replicas > 0 {
		for _, cond := range dep.Status.Conditions {
			if cond.Type == appsv1.DeploymentAvailable {
				status.Available = cond.Status == corev1.ConditionTrue
				status.Reason = cond.Reason
				break
			}
		}
	}
	return status, nil
}

// Scale patches the deployment's replica count.
func (d *Driver) Scale(ctx context.Context, name, namespace string, replicas int32) error {
	patch := []byte(fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas))
	_, err := d.clientset.AppsV1().Deployments(namespace).Patch(
		ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
	if err != nil {
		return fmt.Errorf("failed to scale deployment %s/%s to %d replicas: %w", namespace, name, replicas, err)
	}
	logging.Info("DeploymentDriver", "Scaled deployment %s/%s to %d replicas", namespace, name, replicas)
	return nil
}
