// Package dynamo provides the core types shared by the explicit schemes and
// the simulation driver.
//
// A [Model] is a lumped second-order system
//
//	M a + C v + f_int(u) = f_ext(t),  C = alpha*M + beta*K
//
// where the Rayleigh damping C is applied by the [Scheme], with K v realised
// as a difference of internal forces. The nodal solution and its history
// live in [Kinematics]; schemes read their coefficients from a
// [ParameterReader] during Initialize.
//
// # Example
//
//	m := physics.NewSpringChain(10, 1.0, 1e4)
//	k := dynamo.ForModel(m)
//	s := integrators.NewCentralDifferences()
//	if err := s.Initialize(store, m, k); err != nil {
//		return err
//	}
//	err := s.Step(m, k, 0, dt)
//
// # Thread Safety
//
// A scheme keeps scratch buffers between steps. It may advance more than
// one Kinematics in turn, but never two at once; give each goroutine its own
// scheme and Kinematics.
package dynamo
