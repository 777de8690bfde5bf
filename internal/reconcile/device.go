package reconcile

import (
	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Device upserts one device and copies the fields the snapshot carries.
func (r *Reconciler) Device(snap *snapshot.Device) *types.Device {
	if snap == nil {
		return nil
	}
	d := r.deviceRef(snap.ID)
	if d == nil {
		return nil
	}
	set(&d.Name, snap.Name)
	set(&d.Identifier, snap.Identifier)
	set(&d.DeviceType, snap.DeviceType)
	set(&d.ModelName, snap.ModelName)
	set(&d.ModelCode, snap.ModelCode)
	set(&d.ModelUTI, snap.ModelUTI)
	set(&d.OSVersion, snap.OSVersion)
	set(&d.PlatformIdentifier, snap.PlatformIdentifier)
	set(&d.Architecture, snap.Architecture)
	set(&d.Connected, snap.Connected)
	set(&d.Simulator, snap.Simulator)
	set(&d.EnabledForDevelopment, snap.EnabledForDevelopment)
	set(&d.IsServer, snap.IsServer)
	set(&d.Retina, snap.Retina)
	set(&d.Trusted, snap.Trusted)
	set(&d.Supported, snap.Supported)
	set(&d.Wireless, snap.Wireless)
	return d
}

// deviceRef resolves a device by identifier, creating a bare one when the
// graph has not seen it yet.
func (r *Reconciler) deviceRef(key string) *types.Device {
	if key == "" {
		r.skip(types.KindDevice, "", errMissingKey)
		return nil
	}
	e, err := r.upsert(types.KindDevice, key, nil)
	if err != nil {
		r.skip(types.KindDevice, key, err)
		return nil
	}
	return e.(*types.Device)
}

// Devices merges the complete device listing of a server. Devices the
// listing no longer names are deleted unless an integration or a device
// specification still references them.
func (r *Reconciler) Devices(snaps []snapshot.Device) {
	if snaps == nil {
		return
	}
	seen := make(map[string]bool, len(snaps))
	for i := range snaps {
		if d := r.Device(&snaps[i]); d != nil {
			seen[d.Key] = true
		}
	}
	for _, e := range r.store.All(types.KindDevice) {
		id := e.Base().LocalID
		if seen[e.Base().Key] {
			continue
		}
		if len(r.store.LinkedFrom(types.LinkTestedOn, id)) > 0 ||
			len(r.store.LinkedFrom(types.LinkTargets, id)) > 0 {
			continue
		}
		r.store.Delete(e)
	}
}
