// Package ecs bridges lightning input into a [Donburi] world.
//
// [NewBridge] listens to every event a renderer dispatches and publishes it
// to [InputEventType] together with the node it concerns. ECS systems
// subscribe to the event type and drain it with ProcessEvents:
//
//	b := ecs.NewBridge(r, world)
//	defer b.Close()
//	ecs.InputEventType.Subscribe(world, onInput)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
