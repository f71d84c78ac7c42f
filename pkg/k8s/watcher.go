package k8s

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/dynamic/dynamicinformer"
	"k8s.io/client-go/tools/cache"

	"kwreport/pkg/policyreport"
)

// ReportEventHandler receives the report changes observed in the cluster.
// *store.Store satisfies it.
type ReportEventHandler interface {
	UpdateClusterReports(reports []policyreport.Report)
	UpdateNamespacedReports(reports []policyreport.Report)
	RemoveReport(f policyreport.Family, id string)
	RemoveSummary(resourceID string)
	RegenerateSummaryMap()
}

// WatchReports starts informers on both report families and returns once
// their caches are synced. Adds and updates are committed to handler;
// deletes remove the report and its summary entry. The informers stop
// when ctx is done.
func WatchReports(ctx context.Context, client dynamic.Interface, s policyreport.Schema, handler ReportEventHandler, log logr.Logger) error {
	log = log.WithName("watcher")
	factory := dynamicinformer.NewDynamicSharedInformerFactory(client, 0)

	for _, f := range []policyreport.Family{policyreport.FamilyCluster, policyreport.FamilyNamespaced} {
		informer := factory.ForResource(s.Resource(f)).Informer()
		_, err := informer.AddEventHandler(reportEventHandlerFuncs(f, handler, log))
		if err != nil {
			return fmt.Errorf("failed to register %s report handler: %w", f, err)
		}
	}

	factory.Start(ctx.Done())
	for gvr, synced := range factory.WaitForCacheSync(ctx.Done()) {
		if !synced {
			return fmt.Errorf("failed to sync %s informer", gvr.Resource)
		}
	}
	log.Info("watching reports", "schema", s.Name)
	return nil
}

func reportEventHandlerFuncs(f policyreport.Family, handler ReportEventHandler, log logr.Logger) cache.ResourceEventHandlerFuncs {
	upsert := func(obj interface{}) {
		r, ok := decode(obj, log)
		if !ok {
			return
		}
		if f == policyreport.FamilyCluster {
			handler.UpdateClusterReports([]policyreport.Report{r})
		} else {
			handler.UpdateNamespacedReports([]policyreport.Report{r})
		}
		handler.RegenerateSummaryMap()
	}

	return cache.ResourceEventHandlerFuncs{
		AddFunc: upsert,
		UpdateFunc: func(_, newObj interface{}) {
			upsert(newObj)
		},
		DeleteFunc: func(obj interface{}) {
			if tombstone, ok := obj.(cache.DeletedFinalStateUnknown); ok {
				obj = tombstone.Obj
			}
			r, ok := decode(obj, log)
			if !ok {
				return
			}
			log.V(1).Info("report deleted", "family", f, "id", r.ID())
			handler.RemoveReport(f, r.ID())
			handler.RemoveSummary(r.ResourceID())
		},
	}
}

func decode(obj interface{}, log logr.Logger) (policyreport.Report, bool) {
	u, ok := obj.(*unstructured.Unstructured)
	if !ok {
		return policyreport.Report{}, false
	}
	r, err := policyreport.FromUnstructured(u)
	if err != nil {
		log.Info("skipping report", "error", err.Error())
		return policyreport.Report{}, false
	}
	return r, true
}
