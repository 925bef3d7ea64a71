package combat

import (
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/player"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// State is a phase of the encounter state machine.
type State int

const (
	Idle State = iota
	Selecting
	Spawning
	Active
	Rewarding
	DeathHandling
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Spawning:
		return "spawning"
	case Active:
		return "active"
	case Rewarding:
		return "rewarding"
	case DeathHandling:
		return "death"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// encounter is the mutable trial state of one run. Only Spawning and Active
// consume ticks; the other states are instantaneous transitions.
type encounter struct {
	reg   *gamedata.Registry
	build *player.Build
	src   stats.Source
	tally *Tally

	state State

	dungeon  *gamedata.Dungeon
	area     *gamedata.Area
	sequence []*gamedata.Monster
	progress int

	hp, maxHP      int
	playerTimer    int
	playerInterval int
	regenTimer     int

	enemy      *gamedata.Monster
	enemyHP    int
	enemyTimer int
	spawnTimer int
}

func (e *encounter) reset() {
	e.maxHP = e.build.Defense.Hitpoints
	e.hp = e.maxHP
	e.playerInterval = max(1, e.build.Offense.AttackIntervalMs/TickMs)
	e.regenTimer = RegenTicks
	e.tally.LowestHitpoints = e.maxHP
}

// onTask reports whether kills count towards the build's slayer task.
func (e *encounter) onTask() bool {
	return e.build.SlayerTask && e.dungeon == nil && e.area != nil
}

func (e *encounter) step() {
	switch e.state {
	case Idle, Selecting:
		e.enemy = e.sequence[e.progress]
		e.spawnTimer = SpawnTicks
		e.state = Spawning
	case Spawning, Active:
		e.tick()
	case Rewarding:
		e.reward()
	case DeathHandling:
		e.die()
	case Paused:
		e.state = Selecting
	}
}

func (e *encounter) tick() {
	e.passiveTick()
	if e.state == Spawning {
		e.spawnTimer--
		if e.spawnTimer <= 0 {
			e.spawn()
		}
	} else {
		e.actionTick()
		e.checkDeath()
	}
	e.tally.Ticks++
}

func (e *encounter) passiveTick() {
	e.regenTimer--
	if e.regenTimer > 0 {
		return
	}
	e.regenTimer = RegenTicks
	e.hp = min(e.maxHP, e.hp+max(1, e.maxHP/100))
}

func (e *encounter) spawn() {
	e.enemyHP = e.enemy.Hitpoints
	e.playerTimer = e.playerInterval
	e.enemyTimer = e.enemy.AttackInterval
	e.state = Active
}

func (e *encounter) actionTick() {
	e.playerTimer--
	if e.playerTimer <= 0 {
		e.playerTimer = e.playerInterval
		e.playerAttack()
	}
	if e.enemyHP <= 0 {
		return
	}
	e.enemyTimer--
	if e.enemyTimer <= 0 {
		e.enemyTimer = e.enemy.AttackInterval
		e.enemyAttack()
	}
}

func (e *encounter) checkDeath() {
	switch {
	case e.hp <= 0:
		e.state = DeathHandling
	case e.enemyHP <= 0:
		e.state = Rewarding
	}
}

func (e *encounter) playerAttack() {
	t := e.tally
	b := e.build
	t.PlayerAttacks++
	t.petRolls[b.Offense.AttackIntervalMs]++
	e.consume()

	kind := b.Style.AttackType()
	if !stats.Chance(e.src, HitChance(b.Offense.Accuracy, e.enemy.Evasion.Against(kind))) {
		return
	}
	dmg := min(stats.Between(e.src, 1, b.Offense.MaxHit), e.enemyHP)
	e.enemyHP -= dmg
	t.DamageDealt += dmg

	skills := b.Style.Skills()
	for _, s := range skills {
		t.XP[s] += CombatXPPerDamage * float64(dmg) / float64(len(skills))
	}
	t.XP[gamedata.SkillHitpoints] += HitpointsXPPerDamage * float64(dmg)
}

// consume tallies the resources one player attack uses.
func (e *encounter) consume() {
	t := e.tally
	b := e.build

	if b.PrayerPointsPerAttack > 0 {
		t.PrayerPoints += b.PrayerPointsPerAttack
		t.XP[gamedata.SkillPrayer] += PrayerXPPerPoint * b.PrayerPointsPerAttack
	}
	if b.Potion != "" {
		t.PotionCharges++
	}

	switch b.Style.AttackType() {
	case gamedata.Magic:
		for _, rc := range b.Spell {
			if it, ok := e.reg.Item(rc.Item); ok && it.Category == gamedata.CategoryCombinationRune {
				t.CombinationRunes[rc.Item] += float64(rc.Qty)
			} else {
				t.Runes[rc.Item] += float64(rc.Qty)
			}
		}
	case gamedata.Ranged:
		if b.Equipment.Quiver != "" && !stats.Chance(e.src, b.Modifiers.AmmoPreservationPercent/100) {
			t.Ammo++
		}
	}

	for _, s := range b.Equipment.Summons {
		t.SummonCharges[s.Item]++
		t.XP[gamedata.SkillSummoning] += s.XPPerCharge
	}
}

func (e *encounter) enemyAttack() {
	t := e.tally
	def := e.build.Defense
	if !stats.Chance(e.src, HitChance(e.enemy.Accuracy, def.Evasion.Against(e.enemy.AttackType))) {
		return
	}
	raw := stats.Between(e.src, 1, e.enemy.MaxHit)
	dmg := raw - int(float64(raw)*def.DamageReduction/100)
	e.hp -= dmg
	if dmg > t.HighestDamageTaken {
		t.HighestDamageTaken = dmg
	}
	if e.hp < t.LowestHitpoints {
		t.LowestHitpoints = max(0, e.hp)
	}
	e.autoEat()
}

// autoEat eats equipped food while alive and below the threshold.
func (e *encounter) autoEat() {
	b := e.build
	if e.hp <= 0 || b.AutoEatPercent <= 0 || b.Equipment.Food == "" {
		return
	}
	food, ok := e.reg.Item(b.Equipment.Food)
	if !ok || food.HealAmount <= 0 {
		return
	}
	threshold := int(b.AutoEatPercent / 100 * float64(e.maxHP))
	for e.hp < threshold && e.hp < e.maxHP {
		e.hp = min(e.maxHP, e.hp+food.HealAmount)
		e.tally.Food++
	}
}

func (e *encounter) reward() {
	t := e.tally
	m := e.enemy

	if e.dungeon == nil {
		t.GP += float64(m.Coins.Roll(e.src))
		e.rewardSlayer(m)
		t.Kills++
		e.state = Selecting
		return
	}

	if m.ID == e.dungeon.LastMonster() && e.progress == len(e.sequence)-1 {
		t.GP += float64(m.Coins.Roll(e.src))
	}
	if !e.tally.Target.WholeDungeon {
		t.Kills++
		e.state = Selecting
		return
	}

	t.MonsterKills++
	if e.progress == len(e.sequence)-1 {
		t.Kills++
		e.progress = 0
		e.state = Selecting
		return
	}
	e.progress++
	if e.dungeon.PauseBetween {
		t.Pauses++
		e.state = Paused
	} else {
		e.state = Selecting
	}
}

func (e *encounter) rewardSlayer(m *gamedata.Monster) {
	xp := 0.0
	if e.area != nil && e.area.Kind == gamedata.AreaSlayer {
		xp += float64(m.Hitpoints) / 2
	}
	if e.onTask() {
		e.tally.SlayerCoins += float64(m.Hitpoints) * SlayerCoinsPerHP
		xp += float64(m.Hitpoints)
	}
	if xp > 0 {
		e.tally.XP[gamedata.SkillSlayer] += xp
	}
}

// die restores the player; in whole-dungeon runs the current encounter is
// retried, not the sequence.
func (e *encounter) die() {
	e.tally.Deaths++
	e.hp = e.maxHP
	e.enemy = nil
	e.enemyHP = 0
	e.state = Selecting
}
